//go:build windows

package service

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"

	"signflow/internal/version"
)

// ManagementSupported reports whether install, uninstall, start and stop work here
const ManagementSupported = true

const (
	eventID = 1

	// stopWaitHint covers the HTTP drain plus broker and database close
	stopWaitHint = 30 * time.Second
	stopPoll     = 500 * time.Millisecond
)

var elog debug.Log

// signatureService adapts Application to the Windows service control manager
type signatureService struct {
	app *Application
}

func (s *signatureService) Execute(_ []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}

	exited := make(chan error, 1)
	go func() { exited <- s.app.Run() }()

	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}
	elog.Info(eventID, fmt.Sprintf("%s %s running", ServiceName, version.Version))

	for {
		select {
		case err := <-exited:
			// the app stopped without being asked, usually a failed start
			if err != nil {
				elog.Error(eventID, err.Error())
				return false, 1
			}
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				changes <- svc.Status{State: svc.StopPending, WaitHint: uint32(stopWaitHint / time.Millisecond)}
				elog.Info(eventID, fmt.Sprintf("%s stopping", ServiceName))
				s.app.Shutdown()
				s.app.Wait()
				return false, 0
			default:
				elog.Warning(eventID, fmt.Sprintf("unexpected control request #%d", c.Cmd))
			}
		}
	}
}

// RunService hands the app to the service control manager, or to a console
// harness that emulates it when isDebug is set.
func RunService(isDebug bool, app *Application) error {
	var err error
	if isDebug {
		elog = debug.New(ServiceName)
	} else {
		elog, err = eventlog.Open(ServiceName)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
	}
	defer elog.Close()

	run := svc.Run
	if isDebug {
		run = debug.Run
	}
	if err := run(ServiceName, &signatureService{app: app}); err != nil {
		elog.Error(eventID, fmt.Sprintf("%s failed: %v", ServiceName, err))
		return err
	}
	elog.Info(eventID, fmt.Sprintf("%s stopped", ServiceName))
	return nil
}

// withService opens the installed service and closes both handles afterwards
func withService(fn func(s *mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(ServiceName)
	if err != nil {
		return fmt.Errorf("service %s not installed: %w", ServiceName, err)
	}
	defer s.Close()

	return fn(s)
}

// InstallService registers the binary with delayed auto start so Postgres and
// Redis are up before the first connection attempt.
func InstallService(exePath string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()

	if existing, err := m.OpenService(ServiceName); err == nil {
		existing.Close()
		return fmt.Errorf("service %s already exists", ServiceName)
	}

	s, err := m.CreateService(ServiceName, exePath, mgr.Config{
		DisplayName:      ServiceDisplayName,
		Description:      fmt.Sprintf("%s (%s)", ServiceDescription, version.Version),
		StartType:        mgr.StartAutomatic,
		DelayedAutoStart: true,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer s.Close()

	if err := eventlog.InstallAsEventCreate(ServiceName, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		fmt.Printf("Warning: could not install event log source: %v\n", err)
	}

	recovery := []mgr.RecoveryAction{
		{Type: mgr.ServiceRestart, Delay: 5 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 30 * time.Second},
		{Type: mgr.NoAction},
	}
	if err := s.SetRecoveryActions(recovery, uint32((24 * time.Hour).Seconds())); err != nil {
		fmt.Printf("Warning: failed to set recovery actions: %v\n", err)
	}
	return nil
}

func UninstallService() error {
	return withService(func(s *mgr.Service) error {
		if err := s.Delete(); err != nil {
			return fmt.Errorf("delete service: %w", err)
		}
		if err := eventlog.Remove(ServiceName); err != nil {
			fmt.Printf("Warning: could not remove event log source: %v\n", err)
		}
		return nil
	})
}

func StartService() error {
	return withService(func(s *mgr.Service) error {
		return s.Start()
	})
}

// StopService asks the service to stop and waits until it reports stopped
func StopService() error {
	return withService(func(s *mgr.Service) error {
		status, err := s.Control(svc.Stop)
		if err != nil {
			return fmt.Errorf("send stop: %w", err)
		}

		deadline := time.Now().Add(stopWaitHint)
		for status.State != svc.Stopped {
			if time.Now().After(deadline) {
				return fmt.Errorf("service %s did not stop within %s", ServiceName, stopWaitHint)
			}
			time.Sleep(stopPoll)
			if status, err = s.Query(); err != nil {
				return fmt.Errorf("query service: %w", err)
			}
		}
		return nil
	})
}

func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}
