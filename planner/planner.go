// Package planner ties Step-1, Step-2, brake, and sync together behind the
// control-cycle API of spec §6: New/Calculate/Update/ValidateInput, with
// the stable Result codes of spec §7 and the error-policy capability of
// spec §4.8.
package planner

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/trajgen/brake"
	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
	"go.viam.com/trajgen/step2"
	"go.viam.com/trajgen/sync"
	"go.viam.com/trajgen/trajectory"
)

// Planner holds the trajectory currently being executed and advances it one
// control cycle at a time.
type Planner struct {
	cfg    Config
	logger logging.Logger

	traj        *trajectory.Trajectory
	elapsed     float64
	haveInput   bool
	lastInput   InputParameter
	lastSection int
}

// New builds a Planner for the given configuration. A nil logger gets a
// development logger (spec's ambient logging stack).
func New(cfg Config, logger logging.Logger) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewDevelopment()
	}
	return &Planner{cfg: cfg, logger: logger.Sublogger("planner"), lastSection: -1}, nil
}

// leg is one independently-solved stop-and-go section of the trajectory:
// either an InputParameter.Waypoint or the final leg to TargetState.
type leg struct {
	target         []profile.State
	limits         []profile.Limits
	positionBounds []profile.PositionBound
}

// legsFor expands in's Waypoints and final TargetState into the ordered
// list of legs calculate solves independently (spec §9 waypoint-following
// extension point).
func legsFor(in InputParameter) []leg {
	legs := make([]leg, 0, len(in.Waypoints)+1)
	for _, w := range in.Waypoints {
		legs = append(legs, leg{target: w.TargetState, limits: w.Limits, positionBounds: w.PositionBounds})
	}
	legs = append(legs, leg{target: in.TargetState, positionBounds: in.PositionBounds})
	return legs
}

// limitsFor returns l's per-section limit override when it covers every
// DoF, falling back to the global per-DoF limits otherwise (spec §9
// "per-section limits reducing to the global limits when unset").
func (l leg) limitsFor(global []profile.Limits) []profile.Limits {
	if len(l.limits) == len(global) {
		return l.limits
	}
	return global
}

// Calculate builds a fresh trajectory for in, replacing whatever trajectory
// the Planner was previously executing (spec §6 calculate). It implements
// the full §4.2-§4.6 pipeline: brake, per-DoF Step-1, sync, and trajectory
// assembly, independently for each leg of in.Waypoints plus the final
// TargetState leg.
func (p *Planner) Calculate(in InputParameter) (Result, error) {
	res, err := p.calculate(in)
	return p.applyPolicy(res, err)
}

func (p *Planner) calculate(in InputParameter) (Result, error) {
	checkCurrent := p.cfg.CheckCurrentStateWithinLimits
	checkTarget := p.cfg.CheckTargetStateWithinLimits
	if err := ValidateInput(in, p.cfg.DoF, checkCurrent, checkTarget); err != nil {
		p.logger.Warnw("rejected input", "error", err)
		return ErrorInvalidInput, err
	}

	legs := legsFor(in)
	independentMin := make([]float64, p.cfg.DoF)
	var sections []trajectory.Section
	start := in.CurrentState

	for legIdx, lg := range legs {
		legLimits := lg.limitsFor(in.Limits)
		tasks := make([]step1.Task, p.cfg.DoF)
		brakeProfiles := make([]*profile.Profile, p.cfg.DoF)

		for i := 0; i < p.cfg.DoF; i++ {
			lim := legLimits[i]
			iface := step1.Position
			if len(in.Interface) == p.cfg.DoF {
				iface = in.Interface[i]
			}

			bp, afterBrake, ok := brake.Compute(start[i], lim)
			if !ok {
				p.logger.Errorw("brake pre-trajectory infeasible", "leg", legIdx, "dof", i)
				return ErrorExecutionTimeCalculation, step1.ErrExecutionTimeCalculation
			}
			brakeProfiles[i] = bp

			task := step1.Task{Initial: afterBrake, Target: lg.target[i], Limits: lim, Interface: iface}
			tasks[i] = task

			fast, err := step1.Solve(task)
			if err != nil {
				p.logger.Errorw("step1 solve failed", "leg", legIdx, "dof", i, "error", err)
				return ErrorExecutionTimeCalculation, err
			}
			independentMin[i] += fast.Duration
		}

		minDuration := 0.0
		if legIdx == len(legs)-1 {
			minDuration = in.MinDuration
		}
		results, err := sync.SynchronizeWithMinDuration(tasks, in.SyncStrategy, minDuration, in.Discretization, p.cfg.DeltaTime)
		if err != nil {
			code := classifySyncError(err)
			p.logger.Errorw("synchronization failed", "leg", legIdx, "error", err)
			return code, err
		}

		legSections := make([]*profile.Profile, p.cfg.DoF)
		for i, r := range results {
			legSections[i] = r.Profile
		}

		if p.cfg.MaxDuration > 0 {
			for _, r := range results {
				if r.Duration > p.cfg.MaxDuration {
					err := errTrajectoryDuration(r.Duration, p.cfg.MaxDuration)
					p.logger.Errorw("trajectory duration exceeds configured maximum", "leg", legIdx, "error", err)
					return ErrorTrajectoryDuration, err
				}
			}
		}

		if bounds := lg.positionBounds; len(bounds) == p.cfg.DoF {
			for i, b := range bounds {
				pMin, _, pMax, _ := legSections[i].PositionExtrema()
				if b.Violated(pMin, pMax) {
					err := errPositionalLimits(legIdx, i, pMin, pMax)
					p.logger.Errorw("positional bound violated", "leg", legIdx, "dof", i, "error", err)
					return ErrorPositionalLimits, err
				}
			}
		}

		anyBrake := false
		for _, bp := range brakeProfiles {
			if bp.Duration() > profile.EpsLimit {
				anyBrake = true
				break
			}
		}
		if anyBrake {
			sections = append(sections, trajectory.Section{Profiles: brakeProfiles})
		}
		sections = append(sections, trajectory.Section{Profiles: legSections})

		nextStart := make([]profile.State, p.cfg.DoF)
		for i, sec := range legSections {
			nextStart[i] = sec.Final()
		}
		start = nextStart
	}

	traj, trajErr := trajectory.New(sections, independentMin)
	if trajErr != nil {
		return Error, trajErr
	}

	p.traj = traj
	p.elapsed = 0
	p.haveInput = true
	p.lastInput = in
	p.lastSection = -1
	p.logger.Infow("trajectory calculated", "duration", traj.Duration(), "legs", len(legs))
	return Working, nil
}

// Update advances the Planner by one control cycle, triggering a
// recalculation first if in differs from what the current trajectory was
// built from (spec §4.8 re-planning policy), then sampling every DoF at the
// new elapsed time into out.
func (p *Planner) Update(in InputParameter, out *OutputParameter) (Result, error) {
	res, err := p.update(in, out)
	return p.applyPolicy(res, err)
}

func (p *Planner) update(in InputParameter, out *OutputParameter) (Result, error) {
	out.NewCalculation = false
	out.CalculationDuration = 0
	out.WasCalculationInterrupted = false
	if p.needsRecalculation(in) {
		start := time.Now()
		res, err := p.calculate(in)
		out.CalculationDuration = time.Since(start)
		if res != Working {
			return res, err
		}
		out.NewCalculation = true
	}

	p.elapsed += p.cfg.DeltaTime
	total := p.traj.Duration()
	if p.elapsed > total {
		p.elapsed = total
	}

	out.Trajectory = p.traj
	out.TimeElapsed = p.elapsed
	out.NewCurrentState = make([]profile.State, p.cfg.DoF)
	for d := 0; d < p.cfg.DoF; d++ {
		st, _ := p.traj.AtTime(d, p.elapsed)
		out.NewCurrentState[d] = st
	}

	secIdx := p.traj.SectionIndex(p.elapsed)
	out.CurrentSection = secIdx
	out.DidSectionChange = secIdx != p.lastSection
	p.lastSection = secIdx

	if p.elapsed >= total-1e-9 {
		return Finished, nil
	}
	return Working, nil
}

// needsRecalculation reports whether in differs from the input the current
// trajectory was built from in its target state, limits, position bounds,
// waypoints, sync strategy, minimum duration or discretization (compared
// exactly). CurrentState and Interface are not compared, so a change to
// either alone does not trigger a recalculation.
func (p *Planner) needsRecalculation(in InputParameter) bool {
	if !p.haveInput || p.traj == nil {
		return true
	}
	if !stateSliceEqual(in.TargetState, p.lastInput.TargetState) {
		return true
	}
	if !limitsSliceEqual(in.Limits, p.lastInput.Limits) {
		return true
	}
	if !boundsSliceEqual(in.PositionBounds, p.lastInput.PositionBounds) {
		return true
	}
	if !waypointsEqual(in.Waypoints, p.lastInput.Waypoints) {
		return true
	}
	return in.SyncStrategy != p.lastInput.SyncStrategy ||
		in.MinDuration != p.lastInput.MinDuration ||
		in.Discretization != p.lastInput.Discretization
}

func stateSliceEqual(a, b []profile.State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func limitsSliceEqual(a, b []profile.Limits) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func boundsSliceEqual(a, b []profile.PositionBound) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func waypointsEqual(a, b []Waypoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !stateSliceEqual(a[i].TargetState, b[i].TargetState) {
			return false
		}
		if !limitsSliceEqual(a[i].Limits, b[i].Limits) {
			return false
		}
		if !boundsSliceEqual(a[i].PositionBounds, b[i].PositionBounds) {
			return false
		}
	}
	return true
}

// applyPolicy implements the error-policy capability of spec §4.8: under
// PanicOnError, a failing Result panics instead of being returned.
func (p *Planner) applyPolicy(res Result, err error) (Result, error) {
	if res.IsError() && p.cfg.ErrorPolicy == PanicOnError {
		panic(err)
	}
	return res, err
}

func classifySyncError(err error) Result {
	sawExecution, sawSync := false, false
	for _, e := range multierr.Errors(err) {
		switch {
		case causeIs(e, step1.ErrExecutionTimeCalculation):
			sawExecution = true
		case causeIs(e, step2.ErrSynchronizationCalculation):
			sawSync = true
		}
	}
	switch {
	case sawExecution:
		return ErrorExecutionTimeCalculation
	case sawSync:
		return ErrorSynchronizationCalculation
	default:
		return Error
	}
}

func errTrajectoryDuration(got, max float64) error {
	return errors.Errorf("trajectory duration %.6fs exceeds configured maximum %.6fs", got, max)
}

func errPositionalLimits(leg, dof int, pMin, pMax float64) error {
	return errors.Errorf("leg %d dof %d: reaches [%.6f, %.6f], outside configured positional bounds", leg, dof, pMin, pMax)
}

func causeIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
