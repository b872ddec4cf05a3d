// Package health runs environment checks before a batch, for "pm doctor".
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Check returns nil when the component is usable.
type Check func(ctx context.Context) error

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Latency int64  `json:"latency_ms"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

type namedCheck struct {
	name   string
	detail string
	check  Check
}

type Checker struct {
	checks  []namedCheck
	timeout time.Duration
}

func NewChecker() *Checker {
	return &Checker{timeout: 5 * time.Second}
}

// Add registers a check. detail is shown alongside the result, e.g. the path checked.
func (c *Checker) Add(name, detail string, check Check) *Checker {
	c.checks = append(c.checks, namedCheck{name: name, detail: detail, check: check})
	return c
}

// CheckAll runs every check concurrently and reports them in registration order.
func (c *Checker) CheckAll(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var wg sync.WaitGroup
	components := make([]ComponentHealth, len(c.checks))

	for i, nc := range c.checks {
		wg.Add(1)
		go func(i int, nc namedCheck) {
			defer wg.Done()
			components[i] = run(ctx, nc)
		}(i, nc)
	}

	wg.Wait()

	status := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			status = StatusUnhealthy
			break
		}
	}

	return HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now(),
	}
}

func run(ctx context.Context, nc namedCheck) ComponentHealth {
	start := time.Now()
	err := nc.check(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{
			Name:    nc.name,
			Status:  StatusUnhealthy,
			Latency: latency,
			Detail:  nc.detail,
			Error:   err.Error(),
		}
	}
	return ComponentHealth{
		Name:    nc.name,
		Status:  StatusHealthy,
		Latency: latency,
		Detail:  nc.detail,
	}
}

// WritableDir passes when a file can be created in dir, or in its nearest
// existing ancestor when dir has not been created yet.
func WritableDir(dir string) Check {
	return func(ctx context.Context) error {
		target := filepath.Clean(dir)
		for {
			info, err := os.Stat(target)
			if err == nil {
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", target)
				}
				break
			}
			parent := filepath.Dir(target)
			if parent == target {
				return fmt.Errorf("no existing ancestor of %s", dir)
			}
			target = parent
		}

		f, err := os.CreateTemp(target, ".photomark-health-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}

// ReadableFile passes when path exists and is a regular file.
func ReadableFile(path string) Check {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	}
}
