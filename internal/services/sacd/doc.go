// Package sacd mediates access to the sacd_extract CLI.
//
// Client.Extract converts an SACD ISO's multichannel area into DSF files in a
// scratch "dsf" directory and reports them in track order, taking index and
// title from sacd_extract's "NN - Title.dsf" naming. Callers transcode the
// files and then call Result.Cleanup.
package sacd
