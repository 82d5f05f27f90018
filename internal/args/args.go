package args

// Args is the option bundle shared by the build, run, and test subcommands.
type Args struct {
	// CargoArgs are passed to cargo verbatim, including the original forms
	// of the options recorded below.
	CargoArgs []string
	// RunArgs follow the first `--` and are passed to the runner.
	RunArgs []string

	manifestPath slot[string]
	binName      slot[string]
	target       slot[string]
	release      bool
}

// ManifestPath returns the canonicalized --manifest-path value, if any.
func (a *Args) ManifestPath() (string, bool) {
	return a.manifestPath.get()
}

// BinName returns the --bin value, if any.
func (a *Args) BinName() (string, bool) {
	return a.binName.get()
}

// Target returns the --target value, if any.
func (a *Args) Target() (string, bool) {
	return a.target.get()
}

// Release reports whether --release was passed.
func (a *Args) Release() bool {
	return a.release
}

// SetTarget records a target computed after parsing and forwards it to cargo.
func (a *Args) SetTarget(target string) error {
	if err := a.target.put(target); err != nil {
		return &OptionError{Option: "--target", Value: target, Err: ErrAlreadySet}
	}
	a.CargoArgs = append(a.CargoArgs, "--target", target)
	return nil
}

// SetBinName records a binary name computed after parsing and forwards it to cargo.
func (a *Args) SetBinName(name string) error {
	if err := a.binName.put(name); err != nil {
		return &OptionError{Option: "--bin", Value: name, Err: ErrAlreadySet}
	}
	a.CargoArgs = append(a.CargoArgs, "--bin", name)
	return nil
}

// slot holds a value that may be assigned at most once.
type slot[T any] struct {
	value T
	set   bool
}

func (s *slot[T]) put(v T) error {
	if s.set {
		return ErrAlreadySet
	}
	s.value = v
	s.set = true
	return nil
}

func (s *slot[T]) get() (T, bool) {
	return s.value, s.set
}
