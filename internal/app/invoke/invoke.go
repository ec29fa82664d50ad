// SPDX-License-Identifier: MPL-2.0

package invoke

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/glue"
	"github.com/supypowers/supypowers/internal/issue"
	"github.com/supypowers/supypowers/internal/literal"
	"github.com/supypowers/supypowers/internal/metadata"
	"github.com/supypowers/supypowers/internal/protocol"
	"github.com/supypowers/supypowers/internal/runtime"
	"github.com/supypowers/supypowers/internal/secrets"
)

type (
	// Request is one `run` invocation as the caller typed it.
	Request struct {
		// Folder is the scripts folder, as given (kept relative for display).
		Folder string
		// Target is "script:function"; the script may omit ".py".
		Target string
		// InputData is the raw input argument.
		InputData string
		// Secrets are --secrets values, applied in order.
		Secrets []string
	}

	// Plan is a fully resolved invocation, ready to launch.
	Plan struct {
		Target   discovery.Target
		Script   discovery.ScriptRef
		Function string
		Metadata metadata.Metadata
		Overlay  secrets.Overlay
		// Input is the normalized input_data sent to the child.
		Input string
		// Launch is the request handed to the launcher.
		Launch runtime.LaunchRequest
	}

	// Outcome is what the caller prints and how it exits.
	Outcome struct {
		ExitCode runtime.ExitCode
		// Result is marshaled to a single JSON line on stdout.
		Result any
		// Stderr is child diagnostic output to echo on the caller's stderr.
		Stderr string
		// Err is the underlying error for non-zero outcomes, for logging.
		Err error
	}

	// Service orchestrates invocations against a Launcher.
	Service struct {
		launcher runtime.Launcher
		timeout  time.Duration
		lenient  bool
	}

	// Option configures a Service.
	Option func(*Service)
)

// WithTimeout bounds each child; zero or negative leaves only ctx in charge.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithStrictInput disables the literal fallback for input_data.
func WithStrictInput(strict bool) Option {
	return func(s *Service) { s.lenient = !strict }
}

// NewService creates a Service. Input is lenient unless WithStrictInput(true).
func NewService(launcher runtime.Launcher, opts ...Option) *Service {
	s := &Service{launcher: launcher, lenient: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare resolves req without starting a child. Errors are structural and
// map to exit code 2.
func (s *Service) Prepare(req Request) (*Plan, error) {
	folder, err := discovery.ResolveFolder(req.Folder)
	if err != nil {
		return nil, err
	}

	target, err := discovery.ParseTarget(req.Target)
	if err != nil {
		return nil, err
	}

	script, err := discovery.ResolveScript(folder, target.Script)
	if err != nil {
		return nil, err
	}

	overlay, err := secrets.Resolve(req.Secrets)
	if err != nil {
		return nil, err
	}

	meta := metadata.Read(script.Path)

	input, converted := literal.Normalize(req.InputData, s.lenient)
	if !converted {
		slog.Debug("input_data is not a literal; passing through", "input", input)
	}

	prog := glue.Runner()
	return &Plan{
		Target:   target,
		Script:   script,
		Function: target.Function,
		Metadata: meta,
		Overlay:  overlay,
		Input:    input,
		Launch: runtime.LaunchRequest{
			Script:       script.Path,
			Dependencies: meta.Dependencies,
			Python:       meta.RequiresPython,
			Code:         prog.Source,
			CodeLabel:    prog.Name,
			Payload: protocol.ExecutionPayload{
				ScriptPath:   script.Path,
				FunctionName: target.Function,
				InputData:    input,
				ModuleName:   glue.NewModuleName(),
			},
			Overlay: overlay,
		},
	}, nil
}

// Describe renders the command line the plan would launch.
func (s *Service) Describe(plan *Plan) string {
	return s.launcher.Describe(plan.Launch)
}

// Run prepares and launches req. It never returns a nil Outcome.
func (s *Service) Run(ctx context.Context, req Request) *Outcome {
	plan, err := s.Prepare(req)
	if err != nil {
		return Structural(err)
	}
	return s.Launch(ctx, plan)
}

// Launch runs a prepared plan and interprets the child's output. A non-nil
// Outcome.Err names the target and script it came from.
func (s *Service) Launch(ctx context.Context, plan *Plan) *Outcome {
	out := s.launch(ctx, plan)
	if out.Err != nil {
		out.Err = issue.NewErrorContext().
			WithOperation("run").
			WithTarget(plan.Target.String()).
			WithScript(plan.Script.Path).
			Wrap(out.Err).
			BuildError()
	}
	return out
}

func (s *Service) launch(ctx context.Context, plan *Plan) *Outcome {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.launcher.Launch(ctx, plan.Launch)
	if err != nil {
		var launchErr *runtime.LaunchError
		if !errors.As(err, &launchErr) {
			return &Outcome{ExitCode: runtime.ExitStructural, Result: protocol.NewFailure(err), Err: err}
		}
		return fromLaunchError(launchErr)
	}

	env, err := protocol.DecodeEnvelope(res.Stdout)
	if err != nil {
		return &Outcome{
			ExitCode: runtime.ExitFailure,
			Result:   protocol.NewDecodeFailure(res.Stdout),
			Stderr:   res.Stderr,
			Err:      err,
		}
	}

	if !env.OK {
		return &Outcome{ExitCode: runtime.ExitFailure, Result: env, Err: errors.New(env.Error)}
	}
	return &Outcome{ExitCode: runtime.ExitSuccess, Result: env}
}

// fromLaunchError passes through an envelope the child managed to print
// before exiting non-zero; anything else becomes a launch failure report.
func fromLaunchError(le *runtime.LaunchError) *Outcome {
	if !le.TimedOut() && le.Stdout != "" {
		if env, err := protocol.DecodeEnvelope(le.Stdout); err == nil {
			return &Outcome{ExitCode: le.ExitCode, Result: env, Err: le}
		}
	}
	return &Outcome{
		ExitCode: le.ExitCode,
		Result: protocol.LaunchFailure{
			OK:       false,
			Error:    le.Error(),
			ExitCode: int(le.ExitCode),
			UVStdout: le.Stdout,
			UVStderr: le.Stderr,
		},
		Stderr: le.Stderr,
		Err:    le,
	}
}

// Structural reports an error raised before launch: exit code 2 and
// {"ok":false,"error":...}.
func Structural(err error) *Outcome {
	return &Outcome{ExitCode: runtime.ExitStructural, Result: protocol.NewFailure(err), Err: err}
}
