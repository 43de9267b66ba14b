// Parses flags and configures logging for the procurement service.
//
// The service accepts the following flags:
//
//	-q, --quiet       Suppress informational output.
//	-v, --verbose     Attach source locations to log records.
//	-d, --debug       Enable debug output.
//	-a, --address     Listen address ($SERVICE_ADDR_PROCUREMENT).
//	    --data-dir    Store directory ($PROCUREMENT_DATA_DIR).
//	    --log-level   Explicit log level ($PROCUREMENT_LOG_LEVEL).
//
// Before parsing, the env list file named by $PROCUREMENT_ENV_FILE (default
// ENV.list) is loaded into the process environment when it exists, so its
// keys feed the env-backed flags above. Flags override build-time defaults
// set via linker flags.
//
// Example usage:
//
//	if err := cli.Execute(); err != nil {
//		slog.Error(err.Error())
//		os.Exit(1)
//	}
package cli
