// Package process launches external programs as detached background
// processes.
//
// A Request names the executable, its argument tokens and a Mode:
//
//   - ModeDetached spawns and returns at once with an empty result.
//   - ModeReturnPid spawns and returns the child's pid at once.
//   - ModeCapture spawns, drains stdout and stderr, waits for exit and
//     returns stdout (or the pid, when Request.Pid is set).
//
// Children are placed in their own process group where the platform
// supports it, so signals aimed at the caller's group do not reach them.
// Detached and pid-returning launches never wait on the child.
//
//	res, err := process.Launch(ctx, process.Request{
//	    Binary: "sleep",
//	    Args:   []string{"60"},
//	    Mode:   process.ModeReturnPid,
//	})
package process
