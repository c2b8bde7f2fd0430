package config

// Version is the linkmirror binary version.
// Set at build time via: -ldflags "-X github.com/linkmirror/linkmirror/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
