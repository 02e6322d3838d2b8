package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/led_mixbin_go/internal/montecarlo"
	"github.com/user/led_mixbin_go/internal/parser"
	"github.com/user/led_mixbin_go/internal/pipeline"
	"github.com/user/led_mixbin_go/internal/session"
)

// App struct
type App struct {
	ctx     context.Context
	running atomic.Bool
	stopReq atomic.Bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// Startup is called when the app starts. The context is saved so we can
// call the runtime methods.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, "LED Mix-Bin Simulator")
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "statusUpdate", message)
	}
	log.Println(message)
}

func (a *App) clearLog() {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "clearLog")
	}
}

// StopSimulation requests cancellation of the running simulation. The
// request is picked up at the next cooperative poll.
func (a *App) StopSimulation() string {
	if !a.running.Load() {
		return "No simulation is running."
	}
	a.stopReq.Store(true)
	a.sendStatus("Stop requested, finishing current batch...")
	return "Stop requested."
}

// HandleRunSimulation is called from the frontend to run the full pipeline
// against a session directory. It returns an immediate acknowledgement;
// progress and completion are reported via events.
func (a *App) HandleRunSimulation(rootDir string, trialCount int) (string, error) {
	if a.running.Load() {
		return "", fmt.Errorf("a simulation is already running")
	}
	if trialCount <= 0 {
		return "", fmt.Errorf("trial count must be a positive integer, got %d", trialCount)
	}

	sess, err := session.New(rootDir)
	if err != nil {
		return "", fmt.Errorf("preparing session directory: %v", err)
	}

	a.clearLog()
	a.running.Store(true)
	a.stopReq.Store(false)
	a.sendStatus(fmt.Sprintf("Request: session=[%s], trials=%d", rootDir, trialCount))

	go func() {
		defer a.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("PANIC recovered: %v", r)
				a.sendStatus(errMsg)
				runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			}
		}()

		runtime.EventsEmit(a.ctx, "generationStart")

		runner := &pipeline.Runner{
			Session: sess,
			Status:  a.sendStatus,
			Progress: func(done, total int, detail string) {
				runtime.EventsEmit(a.ctx, "simulationProgress", done, total, detail)
			},
			Stop: a.stopReq.Load,
		}

		err := runner.Run(trialCount)
		switch {
		case errors.Is(err, montecarlo.ErrCancelled):
			a.sendStatus("Simulation stopped by user.")
			runtime.EventsEmit(a.ctx, "generationComplete", false, "Stopped by user.")
		case err != nil:
			var vErr *parser.ValidationError
			errMsg := fmt.Sprintf("Error: %v", err)
			if errors.As(err, &vErr) {
				errMsg = vErr.Msg
			}
			a.sendStatus(errMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
		default:
			successMsg := fmt.Sprintf("Simulation complete. Summary written to %s", sess.SummaryPDFFile())
			a.sendStatus(successMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", true, successMsg)
		}
	}()

	return "Simulation started in background.", nil
}
