// Package pages builds the publishable static site from transcript JSON.
//
// A build reads the page template and every transcript, then writes one page
// per transcript, the shared stylesheet and script, the per-transcript data
// and audio assets, and an index. The output tree is locked for the duration
// of a build and described by a manifest so later builds can prune files they
// no longer produce.
//
// Output layout:
//
//	<output>/index.html
//	<output>/<stem>.html
//	<output>/assets/css/<stylesheet>
//	<output>/assets/js/<script>
//	<output>/assets/data/<stem>.json
//	<output>/assets/audio/<audio file>
//	<output>/.karaoke-manifest.json
//
// Identical inputs produce byte-identical output.
package pages
