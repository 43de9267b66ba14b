// Provides platform-appropriate paths for the service and the build tool.
//
// Paths follow XDG conventions on Linux and platform-native conventions on
// macOS and Windows, with "procurement" as the subdirectory under each base.
package paths
