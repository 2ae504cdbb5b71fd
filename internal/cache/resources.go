package cache

import (
	"context"
	"time"

	"github.com/bassista/trackctl/internal/api"
)

// NewServices creates the shared cache over the appliance's service list.
func NewServices(client *api.Client, ttl time.Duration) *Resource[[]api.ServiceStatus] {
	return New("services", ttl, func(ctx context.Context) ([]api.ServiceStatus, error) {
		return client.Services(ctx)
	})
}

// NewSystemConfig creates the shared cache over the console system config.
func NewSystemConfig(client *api.Client, ttl time.Duration) *Resource[api.SystemConfig] {
	return New("system-config", ttl, func(ctx context.Context) (api.SystemConfig, error) {
		return client.SystemConfig(ctx)
	})
}

// FindService looks up a service by unit name in the cached service list.
func FindService(r *Resource[[]api.ServiceStatus], name string) (api.ServiceStatus, bool) {
	return FindBy(r, func(s api.ServiceStatus) bool { return s.Name == name })
}
