// Package mcp exposes a running flight as Model Context Protocol tools, so
// an agent can step, steer and inspect the simulator.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/kinematics"
	"github.com/san-kum/quadsim/internal/sim"
)

// MaxStepsPerCall bounds a single step_flight call.
const MaxStepsPerCall = 100000

var errInvalidArgument = errors.New("invalid argument")

// Server wraps the MCP SDK server around one flight. Tool calls are
// serialized; the flight itself is not safe for concurrent use.
type Server struct {
	sdk    *mcpsdk.Server
	logger *zap.Logger
	dt     float64

	mu     sync.Mutex
	flight *sim.Flight
}

// NewServer registers the flight tools. dt is the tick used when a
// step_flight call does not name one.
func NewServer(flight *sim.Flight, dt float64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sdk: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    "quadsim",
			Version: "1.0.0",
		}, nil),
		logger: logger,
		dt:     dt,
		flight: flight,
	}

	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "get_flight_state",
		Description: "Returns the true and sensor-measured state of the simulated quadcopter. Angles are degrees.",
	}, s.handleGetState)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "step_flight",
		Description: "Advances the simulation by a number of fixed ticks and returns the resulting state.",
	}, s.handleStep)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "reset_flight",
		Description: "Restores the launch state with a fresh random disturbance and re-arms the controller.",
	}, s.handleReset)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "set_attitude_target",
		Description: "Sets the attitude the controller holds, in degrees.",
	}, s.handleSetTarget)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "set_armed",
		Description: "Arms or disarms the attitude controller. A disarmed vehicle has its motors stopped.",
	}, s.handleSetArmed)
	return s
}

// Run starts the MCP server over stdio and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.sdk.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect connects the server to an existing transport.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

type emptyInput struct{}

type stepInput struct {
	Steps int     `json:"steps,omitempty" jsonschema:"number of ticks to advance, default 1"`
	Dt    float64 `json:"dt,omitempty" jsonschema:"tick length in seconds, default is the server tick"`
}

type targetInput struct {
	RollDeg  float64 `json:"roll_deg"`
	PitchDeg float64 `json:"pitch_deg"`
	YawDeg   float64 `json:"yaw_deg"`
}

type armedInput struct {
	Armed bool `json:"armed"`
}

// FlightStateResponse is the JSON payload returned on success.
type FlightStateResponse struct {
	Step        int         `json:"step"`
	Time        float64     `json:"time_s"`
	Position    dynamo.Vec3 `json:"position_m"`
	Velocity    dynamo.Vec3 `json:"velocity_mps"`
	EulerDeg    dynamo.Vec3 `json:"euler_deg"`
	RatesDeg    dynamo.Vec3 `json:"euler_rates_dps"`
	MeasuredDeg dynamo.Vec3 `json:"measured_euler_deg"`
	TargetDeg   dynamo.Vec3 `json:"target_deg"`
	Motors      [4]float64  `json:"motor_speeds_rad_s"`
	Armed       bool        `json:"armed"`
	Saturated   bool        `json:"saturated"`
	Timestamp   string      `json:"timestamp"`
}

// FlightErrorResponse is returned when a tool cannot complete.
type FlightErrorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
	Suggestion  string `json:"suggestion"`
	Timestamp   string `json:"timestamp"`
}

func (s *Server) handleGetState(ctx context.Context, req *mcpsdk.CallToolRequest, _ emptyInput) (*mcpsdk.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateResult()
}

func (s *Server) handleStep(ctx context.Context, req *mcpsdk.CallToolRequest, input stepInput) (*mcpsdk.CallToolResult, any, error) {
	steps, dt := input.Steps, input.Dt
	if steps == 0 {
		steps = 1
	}
	if dt == 0 {
		dt = s.dt
	}
	if steps < 0 || steps > MaxStepsPerCall {
		return s.errorResult(fmt.Errorf("%w: steps must be in [1, %d], got %d", errInvalidArgument, MaxStepsPerCall, steps)), nil, nil
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return s.errorResult(fmt.Errorf("%w: dt must be positive, got %v", errInvalidArgument, dt)), nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := s.flight.Tick(dt); err != nil {
			s.logger.Warn("step_flight stopped", zap.Int("tick", i), zap.Error(err))
			return s.errorResult(err), nil, nil
		}
	}
	s.logger.Debug("step_flight", zap.Int("steps", steps), zap.Float64("dt", dt), zap.Int("step", s.flight.Step()))
	return s.stateResult()
}

func (s *Server) handleReset(ctx context.Context, req *mcpsdk.CallToolRequest, _ emptyInput) (*mcpsdk.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flight.Reset()
	s.logger.Info("flight reset")
	return s.stateResult()
}

func (s *Server) handleSetTarget(ctx context.Context, req *mcpsdk.CallToolRequest, input targetInput) (*mcpsdk.CallToolResult, any, error) {
	target := dynamo.Vec3{X: input.RollDeg, Y: input.PitchDeg, Z: input.YawDeg}
	if !target.IsValid() {
		return s.errorResult(fmt.Errorf("%w: target must be finite", errInvalidArgument)), nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flight.SetTarget(kinematics.Vec3Deg2Rad(target))
	return s.stateResult()
}

func (s *Server) handleSetArmed(ctx context.Context, req *mcpsdk.CallToolRequest, input armedInput) (*mcpsdk.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !input.Armed {
		s.flight.Disarm()
		return s.stateResult()
	}
	if err := s.flight.Arm(); err != nil {
		return s.errorResult(err), nil, nil
	}
	return s.stateResult()
}

// stateResult must be called with mu held. A halted flight holds
// non-finite values, so it is reported as an error instead.
func (s *Server) stateResult() (*mcpsdk.CallToolResult, any, error) {
	if err := s.flight.Err(); err != nil {
		return s.errorResult(err), nil, nil
	}
	snap := s.flight.Snapshot()
	resp := FlightStateResponse{
		Step:        snap.Step,
		Time:        snap.Time,
		Position:    snap.Position,
		Velocity:    snap.Velocity,
		EulerDeg:    kinematics.Vec3Rad2Deg(snap.EulerAngles),
		RatesDeg:    kinematics.Vec3Rad2Deg(snap.AngularVelocity),
		MeasuredDeg: kinematics.Vec3Rad2Deg(snap.Measured),
		TargetDeg:   kinematics.Vec3Rad2Deg(s.flight.Target()),
		Motors:      snap.Motors,
		Armed:       snap.Armed,
		Saturated:   snap.Saturated,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) errorResult(err error) *mcpsdk.CallToolResult {
	resp := FlightErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	switch {
	case errors.Is(err, dynamo.ErrInvalidState), errors.Is(err, dynamo.ErrDisarmed):
		resp.Code = "FLIGHT_HALTED"
		resp.Recoverable = true
		resp.Suggestion = "Call reset_flight to restore the launch state."
	case errors.Is(err, errInvalidArgument), errors.Is(err, dynamo.ErrInvalidTimestep):
		resp.Code = "INVALID_ARGUMENT"
		resp.Recoverable = true
		resp.Suggestion = "Check the tool arguments and retry."
	default:
		resp.Code = "UNKNOWN_ERROR"
		resp.Recoverable = false
		resp.Suggestion = "Check server logs for details."
	}

	data, _ := json.Marshal(resp)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
		IsError: true,
	}
}
