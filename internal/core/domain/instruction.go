// Package domain contains the core types of the build engine.
package domain

import "strings"

// InstructionKind identifies the variant of an Instruction.
type InstructionKind string

const (
	// KindCopyFiles stages files from the build context into the image filesystem.
	KindCopyFiles InstructionKind = "COPY"
	// KindRunCommand executes a command inside the image filesystem.
	KindRunCommand InstructionKind = "RUN"
	// KindSetWorkdir sets the working directory for subsequent instructions.
	KindSetWorkdir InstructionKind = "WORKDIR"
	// KindSetEnv sets an environment variable for subsequent instructions.
	KindSetEnv InstructionKind = "ENV"
)

// Instruction is one provisioning step of a recipe. It is a tagged variant:
// Kind selects which of the remaining fields are meaningful. Instructions are
// immutable once parsed and their position in the recipe is significant.
type Instruction struct {
	Kind InstructionKind

	// CopyFiles
	Src  string
	Dest string

	// RunCommand
	Argv []string

	// SetWorkdir
	Dir string

	// SetEnv
	Key   string
	Value string
}

// String renders the instruction back in recipe syntax.
func (i Instruction) String() string {
	switch i.Kind {
	case KindCopyFiles:
		return string(i.Kind) + " " + i.Src + " " + i.Dest
	case KindRunCommand:
		return string(i.Kind) + " " + strings.Join(i.Argv, " ")
	case KindSetWorkdir:
		return string(i.Kind) + " " + i.Dir
	case KindSetEnv:
		return string(i.Kind) + " " + i.Key + " " + i.Value
	default:
		return string(i.Kind)
	}
}

// Command describes a process to run inside a build's staging filesystem.
type Command struct {
	Argv []string
	Dir  string
	Env  []string
}
