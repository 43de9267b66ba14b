// Package runtime assembles service images on a containerd daemon.
//
// A [Runtime] connects to containerd and starts build containers from base
// images pulled from a registry. Each [Container] keeps a long-running task alive so
// that shell commands can be executed inside it and files can be streamed
// in as tar archives. Once the steps have run, [Container.Export] commits
// the filesystem diff as a new layer and writes an OCI archive whose config
// carries the entrypoint, working directory and stop signal.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "procurement")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "debian:bookworm-slim", "procurement-build", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	if _, err := ctr.Exec(ctx, runtime.Process{Shell: "/bin/sh", Command: "apt-get update"}); err != nil {
//	    return err
//	}
//
//	path, err := ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"/app/procurement_microservice"},
//	    WorkingDir: "/app",
//	    StopSignal: "SIGINT",
//	})
package runtime
