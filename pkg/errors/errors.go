package errors

import "errors"

var (
	// Memory errors 🧠
	ErrUnmapped    = errors.New("❌ address not mapped")
	ErrNullPointer = errors.New("❌ null pointer in chain")
	ErrBrokenChain = errors.New("❌ pointer chain broken")

	// Resolution errors 🔍
	ErrInvalidSignature  = errors.New("❌ invalid signature pattern")
	ErrSignatureNotFound = errors.New("❌ signature not found")
	ErrModuleNotFound    = errors.New("❌ module not found")

	// Process errors 🎮
	ErrProcessNotFound     = errors.New("❌ process not found")
	ErrProcessExited       = errors.New("❌ process exited")
	ErrUnsupportedPlatform = errors.New("❌ platform not supported")
)
