package service

import (
	"errors"

	"signflow/internal/version"
)

const (
	ServiceName        = "Signflow"
	ServiceDisplayName = version.ServiceName
	ServiceDescription = "Signature requests, signer workflow and stamped documents for HR"
)

// ErrUnsupportedPlatform is returned by service management calls outside Windows
var ErrUnsupportedPlatform = errors.New("service management is only supported on Windows")
