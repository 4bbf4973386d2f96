// Package testutil starts disposable brokers in Docker for integration tests.
package testutil

import (
	"context"
	"fmt"
	"strings"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// StartMosquitto launches an anonymous Mosquitto 2 broker and returns its
// tcp URL along with a cleanup function.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Files: []tc.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("1883/tcp"),
			wait.ForLog(" running"),
		),
	}
	return start(ctx, req, "1883", "tcp")
}

// start runs req and returns scheme://host:port for the mapped port.
func start(ctx context.Context, req tc.ContainerRequest, port, scheme string) (string, func(), error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }
	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	mapped, err := cont.MappedPort(ctx, port)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()), cleanup, nil
}
