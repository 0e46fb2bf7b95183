// Package sandbox is a Runner that executes each call inside a Docker
// container, for operators who do not trust the bytecode under test to run
// in the fuzzer's own process. Each Execute is one `docker exec` of the
// configured entrypoint: one JSON request on stdin, one JSON response read
// from its output.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/runner"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// wireRequest/wireResponse are the JSON envelopes exchanged with the
// in-container binary over one `docker exec`.
type wireRequest struct {
	Module   string `json:"module"`
	Function string `json:"function"`
	Inputs   string `json:"inputs"` // hex-encoded native-width byte buffers, one per input
}

type wireResponse struct {
	Trace    []uint64 `json:"trace"`
	Status   string   `json:"status"` // empty on success
	Location string   `json:"location"`
	Detail   string   `json:"detail"`
}

// Runner wraps a Docker container running the target module's real VM
// binary, communicating over docker exec rather than in-process calls.
type Runner struct {
	cli         *client.Client
	containerID string
	image       string
	entrypoint  []string

	module   string
	fnName   string
	schema   []typedvalue.Value
	maxCover uint64
}

// Config names the sandbox image and the entrypoint that, inside the
// container, reads a wireRequest from stdin and writes a wireResponse to
// stdout.
type Config struct {
	Image      string
	Entrypoint []string
	Module     string
	MaxCover   uint64
}

// New creates and starts the sandbox container. The caller is responsible
// for calling Close when done.
func New(ctx context.Context, cfg Config) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sandbox: create docker client: %w", err)
	}

	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        cfg.Image,
		Entrypoint:   []string{"sleep"},
		Cmd:          []string{"infinity"},
		Tty:          false,
		AttachStdout: false,
	}, nil, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("sandbox: create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("sandbox: start container: %w", err)
	}

	return &Runner{
		cli:         cli,
		containerID: resp.ID,
		image:       cfg.Image,
		entrypoint:  cfg.Entrypoint,
		module:      cfg.Module,
		maxCover:    cfg.MaxCover,
	}, nil
}

// Close stops and removes the sandbox container.
func (r *Runner) Close(ctx context.Context) error {
	if err := r.cli.ContainerStop(ctx, r.containerID, container.StopOptions{}); err != nil {
		return fmt.Errorf("sandbox: stop container: %w", err)
	}
	if err := r.cli.ContainerRemove(ctx, r.containerID, types.ContainerRemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("sandbox: remove container: %w", err)
	}
	return r.cli.Close()
}

// SetTargetFunction implements runner.Runner.
func (r *Runner) SetTargetFunction(f typedvalue.Value) {
	if fn := f.Function(); fn != nil {
		r.fnName = fn.Name
		r.schema = fn.Params
	}
}

// GetTargetParameters implements runner.Runner.
func (r *Runner) GetTargetParameters() []typedvalue.Value { return r.schema }

// GetTargetModule implements runner.Runner.
func (r *Runner) GetTargetModule() string { return r.module }

// GetTargetFunction implements runner.Runner.
func (r *Runner) GetTargetFunction() typedvalue.Value {
	return typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: r.fnName, Params: r.schema})
}

// GetMaxCoverage implements runner.Runner.
func (r *Runner) GetMaxCoverage() uint64 { return r.maxCover }

// Execute implements runner.Runner by round-tripping the inputs through a
// docker exec into the sandboxed entrypoint.
func (r *Runner) Execute(inputs []typedvalue.Value) runner.ExecResult {
	ctx := context.Background()

	req := wireRequest{
		Module:   r.module,
		Function: r.fnName,
		Inputs:   encodeInputs(inputs),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		e := vmerror.New(vmerror.Unknown, fmt.Sprintf("sandbox: encode request: %v", err))
		return runner.ExecResult{Err: &e}
	}

	out, err := r.execWithStdin(ctx, r.entrypoint, payload)
	if err != nil {
		e := vmerror.New(vmerror.Unknown, fmt.Sprintf("sandbox: exec: %v", err))
		return runner.ExecResult{Err: &e}
	}

	var resp wireResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		e := vmerror.New(vmerror.Unknown, fmt.Sprintf("sandbox: decode response: %v", err))
		return runner.ExecResult{Err: &e}
	}

	trace := make([]coverage.PC, len(resp.Trace))
	for i, pc := range resp.Trace {
		trace[i] = coverage.PC(pc)
	}
	cov := coverage.New(inputs, trace)

	if resp.Status == "" {
		return runner.ExecResult{Coverage: &cov}
	}
	classified := vmerror.Classify(vmerror.VMStatus(resp.Status), resp.Location, resp.Detail)
	return runner.ExecResult{Coverage: &cov, Err: &classified}
}

// execWithStdin runs cmd inside the sandbox container, feeding stdin and
// capturing combined stdout/stderr via the attach/inspect pattern.
func (r *Runner) execWithStdin(ctx context.Context, cmd []string, stdin []byte) ([]byte, error) {
	execConfig := types.ExecConfig{
		Cmd:          cmd,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := r.cli.ContainerExecCreate(ctx, r.containerID, execConfig)
	if err != nil {
		return nil, fmt.Errorf("create exec: %w", err)
	}

	attach, err := r.cli.ContainerExecAttach(ctx, execID.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, fmt.Errorf("attach exec: %w", err)
	}
	defer attach.Close()

	if _, err := attach.Conn.Write(stdin); err != nil {
		return nil, fmt.Errorf("write stdin: %w", err)
	}
	attach.CloseWrite()

	output, err := io.ReadAll(attach.Reader)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return output, fmt.Errorf("inspect exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return output, fmt.Errorf("exec exited %d: %s", inspect.ExitCode, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func encodeInputs(inputs []typedvalue.Value) string {
	var sb strings.Builder
	for i, v := range inputs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(fmt.Sprintf("%x", v.Bytes()))
	}
	return sb.String()
}
