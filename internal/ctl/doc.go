// Parses flags and dispatches the procurectl build tool.
//
// procurectl replaces the per-variant recipe and image files with one
// parameterized tool:
//
//	procurectl sync
//	procurectl build
//	procurectl release [--version V] [--stage S]
//	procurectl run [-- ARGS...]          (alias: dev)
//	procurectl test [PACKAGES...]
//	procurectl image dockerfile --variant debian|fedora
//	procurectl image build --variant debian|fedora [--backend docker|containerd]
//
// Global flags select the source tree (a directory or git URL) and the env
// list file. A failing tool's exit status becomes procurectl's exit status.
package ctl
