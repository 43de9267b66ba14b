// Package envfile loads KEY=VALUE list files and merges them into process
// environments.
//
// The list file is the single configuration injection point shared by the
// build tool and the service: procurectl exports every key it finds into the
// commands it runs, and the service loads the same file at startup without
// overriding variables that are already set.
//
// Example usage:
//
//	vars, err := envfile.Read("ENV.list")
//	if err != nil {
//	    return err
//	}
//	cmd.Env = envfile.Merge(os.Environ(), vars)
package envfile
