// Package build runs image recipes against containerd.
//
// A [Recipe] is an ordered list of stages. Each stage starts a container
// from its base image and executes its steps: shell commands, copies from
// the build context, and copies out of earlier named stages. Modifier steps
// (workdir, env) accumulate within a stage and reset between stages.
// The one non-transient stage is exported as an OCI archive carrying the
// configured entrypoint, working directory and stop signal. Builds for
// several platforms repeat the stages per platform.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe: recipe,
//	    Output: "dist/image",
//	    Root:   ".",
//	    Image: runtime.ImageConfig{
//	        Entrypoint: []string{"/app/procurement_microservice"},
//	        WorkingDir: "/app",
//	        StopSignal: "SIGINT",
//	    },
//	})
//	if err != nil {
//	    return err
//	}
package build
