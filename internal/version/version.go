package version

// Version is set during build via ldflags:
//
//	go build -ldflags "-X signflow/internal/version.Version=1.2.0" ./cmd/service
var Version = "dev"

const ServiceName = "Signflow Signature Service"
