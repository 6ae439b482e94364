package mostrador

// Version is the module version, overridable at build time with
// -ldflags "-X github.com/unanue/mostrador.Version=...".
var Version = "0.1.0"
