// Package recipe parses provisioning recipes into instruction sequences.
package recipe

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.RecipeParser = (*Parser)(nil)

// Parser implements ports.RecipeParser for line-oriented recipe text.
//
// A recipe is a sequence of lines of the form:
//
//	COPY <src> <dest>
//	RUN <argv...>
//	WORKDIR <absolute path>
//	ENV <key> <value>
//
// Blank lines and lines starting with '#' are skipped. A trailing backslash
// continues an instruction on the next line.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads recipe text and returns the validated instruction sequence.
// It has no side effects; on failure the error names the offending line and
// the reason.
func (p *Parser) Parse(r io.Reader) ([]domain.Instruction, error) {
	var instructions []domain.Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		startLine := lineNo

		// Join continuation lines before interpreting the instruction.
		for strings.HasSuffix(line, "\\") && scanner.Scan() {
			lineNo++
			line = strings.TrimSuffix(line, "\\") + " " + strings.TrimSpace(scanner.Text())
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		instr, err := parseLine(line)
		if err != nil {
			return nil, zerr.With(err, "line", startLine)
		}
		instructions = append(instructions, instr)
	}

	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read recipe")
	}

	return instructions, nil
}

// ParseFile parses the recipe at the given path.
func (p *Parser) ParseFile(path string) ([]domain.Instruction, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrRecipeReadFailed, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	return p.Parse(f)
}

func parseLine(line string) (domain.Instruction, error) {
	fields, err := splitFields(line)
	if err != nil {
		return domain.Instruction{}, err
	}
	if len(fields) == 0 {
		return domain.Instruction{}, zerr.Wrap(domain.ErrMalformedInstruction, "empty instruction")
	}
	keyword := strings.ToUpper(fields[0])
	args := fields[1:]

	switch domain.InstructionKind(keyword) {
	case domain.KindCopyFiles:
		return parseCopy(args)
	case domain.KindRunCommand:
		return parseRun(args)
	case domain.KindSetWorkdir:
		return parseWorkdir(args)
	case domain.KindSetEnv:
		return parseEnv(args)
	default:
		return domain.Instruction{}, zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, "unknown instruction keyword"),
			"keyword", fields[0],
		)
	}
}

func parseCopy(args []string) (domain.Instruction, error) {
	if len(args) != 2 {
		return domain.Instruction{}, zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, "COPY requires exactly a source and a destination"),
			"args", len(args),
		)
	}

	src, dest := args[0], args[1]
	if err := validateContextPath(src); err != nil {
		return domain.Instruction{}, err
	}
	if err := validateDestPath(dest); err != nil {
		return domain.Instruction{}, err
	}

	return domain.Instruction{Kind: domain.KindCopyFiles, Src: src, Dest: dest}, nil
}

func parseRun(args []string) (domain.Instruction, error) {
	if len(args) == 0 {
		return domain.Instruction{}, zerr.Wrap(domain.ErrMalformedInstruction, "RUN requires a command")
	}
	return domain.Instruction{Kind: domain.KindRunCommand, Argv: args}, nil
}

func parseWorkdir(args []string) (domain.Instruction, error) {
	if len(args) != 1 {
		return domain.Instruction{}, zerr.Wrap(domain.ErrMalformedInstruction, "WORKDIR requires exactly one path")
	}
	if !path.IsAbs(args[0]) {
		return domain.Instruction{}, zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, "WORKDIR path must be absolute"),
			"path", args[0],
		)
	}
	return domain.Instruction{Kind: domain.KindSetWorkdir, Dir: path.Clean(args[0])}, nil
}

func parseEnv(args []string) (domain.Instruction, error) {
	if len(args) != 2 {
		return domain.Instruction{}, zerr.Wrap(domain.ErrMalformedInstruction, "ENV requires exactly a key and a value")
	}
	return domain.Instruction{Kind: domain.KindSetEnv, Key: args[0], Value: args[1]}, nil
}

// splitFields tokenizes an instruction line. Single and double quotes group
// whitespace into one argument; the quotes themselves are stripped.
func splitFields(line string) ([]string, error) {
	var fields []string
	var current strings.Builder
	var quote rune
	inField := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}

	if quote != 0 {
		return nil, zerr.Wrap(domain.ErrMalformedInstruction, "unterminated quote")
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}

// validateContextPath rejects copy sources that reach outside the build
// context. Containment is re-checked against the real filesystem at staging
// time; this is the parse-time lexical check.
func validateContextPath(src string) error {
	if path.IsAbs(src) {
		return zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, "COPY source must be relative to the build context"),
			"path", src,
		)
	}
	clean := path.Clean(src)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, domain.ErrPathEscapesContext.Error()),
			"path", src,
		)
	}
	return nil
}

// validateDestPath rejects relative destinations that escape the working
// directory. Absolute destinations are allowed; they address the image
// filesystem root.
func validateDestPath(dest string) error {
	if path.IsAbs(dest) {
		return nil
	}
	clean := path.Clean(dest)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return zerr.With(
			zerr.Wrap(domain.ErrMalformedInstruction, domain.ErrPathEscapesContext.Error()),
			"path", dest,
		)
	}
	return nil
}
