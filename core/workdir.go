package core

import "os"

// Workdir holds the working directory that cd changes and external commands
// start in.
type Workdir interface {
	Chdir(dir string) error
	Getwd() (string, error)
}

// ProcessWorkdir uses the server process's own working directory. Changes
// are global: they outlive the session that made them and are seen by
// every later session.
type ProcessWorkdir struct{}

var _ Workdir = ProcessWorkdir{}

// Chdir implements Workdir.
func (ProcessWorkdir) Chdir(dir string) error {
	return os.Chdir(dir)
}

// Getwd implements Workdir.
func (ProcessWorkdir) Getwd() (string, error) {
	return os.Getwd()
}
