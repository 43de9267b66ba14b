// Package image packages the release binary into a container image.
//
// One [Definition] covers every supported base image. A [Variant] selects
// the base image and package manager; the definition adds the optional
// package refresh and diagnostic tool install, sets the working directory,
// copies the binary into it, declares SIGINT as the stop signal and makes
// the binary the exec-form entrypoint with no arguments.
//
// With [WithSource] the binary is compiled from a source tree instead: a
// transient builder stage downloads modules, builds with the release
// linker stamps and strips the result, and the final stage copies it out.
//
// The definition can be rendered as a Dockerfile, built by a Docker engine,
// or built directly on containerd through the build package.
//
// Example usage:
//
//	def, err := image.New("debian", "target/release/procurement_microservice")
//	if err != nil {
//	    return err
//	}
//	if err := def.Validate(); err != nil {
//	    return err // image.ErrMissingBinary when the release build is absent
//	}
//	dockerfile, err := def.Dockerfile()
package image
