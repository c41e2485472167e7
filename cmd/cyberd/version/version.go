package version

// overridden with -ldflags at release build
var version = "dev"
