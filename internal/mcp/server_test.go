package mcp_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/quadsim/internal/dynamo"
	internalmcp "github.com/san-kum/quadsim/internal/mcp"
	"github.com/san-kum/quadsim/internal/sim"
)

func newFlight(t *testing.T) *sim.Flight {
	t.Helper()
	cfg := sim.DefaultFlightConfig()
	cfg.Disturbance = 0
	cfg.EulerAngles = dynamo.Vec3{X: 0.1}
	f, err := sim.NewFlight(cfg)
	require.NoError(t, err)
	return f
}

// connect starts the server on in-memory transports and returns a client
// session.
func connect(t *testing.T, f *sim.Flight) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	srv := internalmcp.NewServer(f, 0.01, nil)
	st, ct := mcpsdk.NewInMemoryTransports()

	_, err := srv.Connect(ctx, st)
	require.NoError(t, err)

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "1.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcpsdk.ClientSession, name string, args map[string]any) (*mcpsdk.CallToolResult, map[string]any) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text := res.Content[0].(*mcpsdk.TextContent).Text
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &m))
	return res, m
}

func TestGetFlightState(t *testing.T) {
	cs := connect(t, newFlight(t))
	res, m := call(t, cs, "get_flight_state", nil)

	require.False(t, res.IsError)
	assert.Equal(t, 0.0, m["step"])
	assert.Equal(t, true, m["armed"])

	euler := m["euler_deg"].(map[string]any)
	assert.InDelta(t, 0.1*180/math.Pi, euler["x"].(float64), 1e-9)

	ts, ok := m["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestStepFlight(t *testing.T) {
	f := newFlight(t)
	cs := connect(t, f)

	res, m := call(t, cs, "step_flight", map[string]any{"steps": 500})
	require.False(t, res.IsError)
	assert.Equal(t, 500.0, m["step"])
	assert.InDelta(t, 5.0, m["time_s"].(float64), 1e-9)

	euler := m["euler_deg"].(map[string]any)
	assert.Less(t, math.Abs(euler["x"].(float64)), 0.1*180/math.Pi, "controller should reduce roll")

	res, m = call(t, cs, "step_flight", nil)
	require.False(t, res.IsError)
	assert.Equal(t, 501.0, m["step"])
}

func TestStepFlightRejectsBadArguments(t *testing.T) {
	cs := connect(t, newFlight(t))

	for _, args := range []map[string]any{
		{"steps": -1},
		{"steps": internalmcp.MaxStepsPerCall + 1},
		{"dt": -0.01},
	} {
		res, m := call(t, cs, "step_flight", args)
		assert.True(t, res.IsError, "%v", args)
		assert.Equal(t, "INVALID_ARGUMENT", m["code"])
	}
}

func TestSetAttitudeTarget(t *testing.T) {
	cs := connect(t, newFlight(t))

	res, m := call(t, cs, "set_attitude_target", map[string]any{"roll_deg": 10, "pitch_deg": 0, "yaw_deg": -5})
	require.False(t, res.IsError)
	target := m["target_deg"].(map[string]any)
	assert.InDelta(t, 10, target["x"].(float64), 1e-9)
	assert.InDelta(t, -5, target["z"].(float64), 1e-9)

	_, m = call(t, cs, "step_flight", map[string]any{"steps": 1000})
	euler := m["euler_deg"].(map[string]any)
	assert.InDelta(t, 10, euler["x"].(float64), 0.1)
}

func TestSetArmed(t *testing.T) {
	cs := connect(t, newFlight(t))

	res, m := call(t, cs, "set_armed", map[string]any{"armed": false})
	require.False(t, res.IsError)
	assert.Equal(t, false, m["armed"])
	motors := m["motor_speeds_rad_s"].([]any)
	for _, w := range motors {
		assert.Equal(t, 0.0, w)
	}

	res, m = call(t, cs, "set_armed", map[string]any{"armed": true})
	require.False(t, res.IsError)
	assert.Equal(t, true, m["armed"])
}

func TestHaltedFlightReportsAndRecovers(t *testing.T) {
	f := newFlight(t)
	f.Quadcopter().SetAngularVelocity(dynamo.Vec3{Y: math.NaN()})
	cs := connect(t, f)

	res, m := call(t, cs, "step_flight", nil)
	require.True(t, res.IsError)
	assert.Equal(t, "FLIGHT_HALTED", m["code"])
	assert.Equal(t, true, m["recoverable"])

	res, m = call(t, cs, "set_armed", map[string]any{"armed": true})
	require.True(t, res.IsError)
	assert.Equal(t, "FLIGHT_HALTED", m["code"])

	res, m = call(t, cs, "get_flight_state", nil)
	require.True(t, res.IsError)
	assert.Equal(t, "FLIGHT_HALTED", m["code"])

	res, m = call(t, cs, "reset_flight", nil)
	require.False(t, res.IsError)
	assert.Equal(t, 0.0, m["step"])
	assert.Equal(t, true, m["armed"])

	res, _ = call(t, cs, "step_flight", map[string]any{"steps": 10})
	assert.False(t, res.IsError)
}
