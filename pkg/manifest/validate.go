package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/verify"
)

// Validate checks the gateway's view of the manifest.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Hooks.Secret) == "" {
		errs = append(errs, errors.New("hooks.secret is required (or set WEBHOOK_SECRET)"))
	} else if _, err := verify.New(c.Verifier()); err != nil {
		errs = append(errs, fmt.Errorf("hooks: %w", err))
	}
	if !strings.HasPrefix(c.Hooks.Path, "/") {
		errs = append(errs, fmt.Errorf("hooks.path %q must start with /", c.Hooks.Path))
	}
	if c.Hooks.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("hooks.max_body_bytes must be >= 0"))
	}

	e := c.Envelope
	if e.Model == "" || e.Event == "" || e.Data == "" {
		errs = append(errs, errors.New("envelope keys must be non-empty"))
	} else if e.Model == e.Event || e.Model == e.Data || e.Event == e.Data {
		errs = append(errs, errors.New("envelope keys must be distinct"))
	}

	switch c.Backend.Kind {
	case BackendInproc:
	case BackendRelay:
		if len(c.Backend.Targets) == 0 {
			errs = append(errs, errors.New("backend.kind=relay needs backend.targets (or ELECTRICIAN_TARGET)"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.kind %q: want inproc or relay", c.Backend.Kind))
	}
	if c.Backend.Workers < 0 || c.Backend.QueueSize < 0 || c.Backend.JobTimeoutMS < 0 {
		errs = append(errs, errors.New("backend.workers, queue_size and job_timeout_ms must be >= 0"))
	}

	if c.Admin.Enabled && strings.TrimSpace(c.Admin.JWTSecret) == "" {
		errs = append(errs, errors.New("admin.enabled needs admin.jwt_secret (or ADMIN_JWT_SECRET)"))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, errors.New("server.tls_cert and server.tls_key go together"))
	}
	return errors.Join(errs...)
}

// ValidateWorker checks the settings a remote worker needs. The signing
// secret is irrelevant there.
func (c *Config) ValidateWorker() error {
	if strings.TrimSpace(c.Worker.Address) == "" {
		return errors.New("worker.address is required")
	}
	if c.Worker.Buffer < 0 || c.Backend.Workers < 0 || c.Backend.QueueSize < 0 {
		return errors.New("worker.buffer, backend.workers and backend.queue_size must be >= 0")
	}
	return nil
}
