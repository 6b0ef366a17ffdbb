package security

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "kasmbridge/internal/errors"
)

// ViolationKind classifies why a request was denied.
type ViolationKind int

const (
	BlockedCommand ViolationKind = iota
	DangerousPattern
	PathOutsideRoots
	SensitiveWriteTarget
)

func (k ViolationKind) String() string {
	switch k {
	case BlockedCommand:
		return "blocked_command"
	case DangerousPattern:
		return "dangerous_pattern"
	case PathOutsideRoots:
		return "path_outside_roots"
	case SensitiveWriteTarget:
		return "sensitive_write_target"
	default:
		return "unknown"
	}
}

// Violation is the typed denial returned by the validator. Denial is an
// expected, modeled outcome, not an exceptional one; callers detect it with
// errors.As and must abort the pending remote operation.
type Violation struct {
	Kind   ViolationKind
	Detail string
}

func (v *Violation) Error() string {
	switch v.Kind {
	case BlockedCommand:
		return fmt.Sprintf("command '%s' is not allowed", v.Detail)
	case DangerousPattern:
		return fmt.Sprintf("command contains dangerous pattern: %s", v.Detail)
	case PathOutsideRoots:
		return fmt.Sprintf("path '%s' is outside allowed roots", v.Detail)
	case SensitiveWriteTarget:
		return fmt.Sprintf("write to sensitive path '%s' is not allowed", v.Detail)
	default:
		return fmt.Sprintf("security violation: %s", v.Detail)
	}
}

// Unwrap ties every violation to the SECURITY_VIOLATION code so callers can
// match denials with errors.Is without inspecting the kind.
func (v *Violation) Unwrap() error {
	return apperrors.ErrSecurityViolation
}

// Operation is the kind of file access being validated.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
	OpAccess
)

func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "access"
	}
}

// Validator decides, before any remote command executes or any file is
// touched, whether the requested operation is confined to the allowed roots
// and free of known-dangerous shell constructs. It is pure string and path
// analysis: no network, no session state, safe for concurrent use.
type Validator struct {
	roots *RootSet
}

// NewValidator creates a validator over the given root set.
func NewValidator(roots *RootSet) *Validator {
	return &Validator{roots: roots}
}

// Roots exposes the underlying root set (used by dynamic reconfiguration and
// the check subcommand).
func (v *Validator) Roots() *RootSet {
	return v.roots
}

// ValidateCommand checks a shell command, and its working directory when one
// is supplied, against the blocklist, the dangerous-pattern set and the
// configured roots. A nil return means the command may be forwarded.
func (v *Validator) ValidateCommand(command string, workingDir string) error {
	if fields := strings.Fields(command); len(fields) > 0 {
		base := filepath.Base(fields[0])
		if _, blocked := blockedCommands[base]; blocked {
			return &Violation{Kind: BlockedCommand, Detail: base}
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(command) {
			return &Violation{Kind: DangerousPattern, Detail: pattern.String()}
		}
	}

	if workingDir != "" && !v.roots.Contains(workingDir) {
		return &Violation{Kind: PathOutsideRoots, Detail: workingDir}
	}

	return v.checkCommandPaths(command)
}

// checkCommandPaths heuristically extracts file-path operands from the
// command text and denies any absolute path outside all roots. Relative
// operands are not validated here: without a resolvable working directory
// their target is unknowable from the text alone, and obfuscated constructs
// (variable expansion, alternate separators) can evade extraction entirely.
// This is a limitation of static analysis, not a guarantee.
func (v *Validator) checkCommandPaths(command string) error {
	for _, pattern := range pathPatterns {
		for _, match := range pattern.FindAllStringSubmatch(command, -1) {
			operand := match[1]
			if strings.HasPrefix(operand, "-") {
				continue
			}
			if !strings.HasPrefix(operand, "/") {
				continue
			}
			if !v.roots.Contains(operand) {
				return &Violation{Kind: PathOutsideRoots, Detail: operand}
			}
		}
	}
	return nil
}

// ValidateFileOperation checks an explicit file access. Writes are
// additionally denied when the resolved target falls under a sensitive
// system prefix or a credential directory, even inside an allowed root.
func (v *Validator) ValidateFileOperation(path string, op Operation) error {
	if !v.roots.Contains(path) {
		return &Violation{Kind: PathOutsideRoots, Detail: path}
	}

	if op == OpWrite {
		resolved := Canonicalize(path)
		for _, prefix := range sensitiveWritePrefixes {
			if isWithin(prefix, resolved) {
				return &Violation{Kind: SensitiveWriteTarget, Detail: resolved}
			}
		}
		for _, segment := range strings.Split(resolved, string(filepath.Separator)) {
			if _, sensitive := sensitiveWriteSegments[segment]; sensitive {
				return &Violation{Kind: SensitiveWriteTarget, Detail: resolved}
			}
		}
	}

	return nil
}

// SafePath joins path onto baseDir when relative, canonicalizes, and returns
// the canonical form if it is contained in the roots. This is a convenience
// composition over Canonicalize and Contains.
func (v *Validator) SafePath(path string, baseDir string) (string, error) {
	full := path
	if baseDir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(baseDir, path)
	}

	resolved := Canonicalize(full)
	if !v.roots.Contains(resolved) {
		return "", &Violation{Kind: PathOutsideRoots, Detail: path}
	}
	return resolved, nil
}
