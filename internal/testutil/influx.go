package testutil

import (
	"context"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// InfluxSetup is the organisation, bucket and admin token created when the
// InfluxDB container initialises.
type InfluxSetup struct {
	Org    string
	Bucket string
	Token  string
}

// StartInflux launches an InfluxDB 2.7 container initialised with s and
// returns its base URL along with a cleanup function.
func StartInflux(ctx context.Context, s InfluxSetup) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "ldarsim",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "ldarsim-password",
			"DOCKER_INFLUXDB_INIT_ORG":         s.Org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      s.Bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": s.Token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	return start(ctx, req, "8086", "http")
}
