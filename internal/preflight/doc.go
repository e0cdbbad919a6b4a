// Package preflight runs the environment checks spec.md §6 implies but
// never automates: the gfal2-util binaries the CLI adapter shells out to,
// and the X509 proxy file it reads. Grounded on the teacher's preflight
// package, generalized from media-tooling checks (ffmpeg, MakeMKV) to
// grid-storage tooling.
package preflight
