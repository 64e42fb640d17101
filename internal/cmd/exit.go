package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	apperrors "github.com/namelens/fredlens/internal/errors"
)

// ExitCodeFor maps a command error onto a semantic foundry exit code.
// Upstream failures exit as ExternalServiceUnavailable so scripts can retry
// them; configuration problems exit as ConfigInvalid.
func ExitCodeFor(err error) foundry.ExitCode {
	if err == nil {
		return foundry.ExitCode(0)
	}
	env := apperrors.FromError(context.Background(), err)
	switch env.Code {
	case apperrors.CodeConfigInvalid:
		return foundry.ExitConfigInvalid
	case apperrors.CodeExternalService, apperrors.CodeTimeout, apperrors.CodeRateLimited, apperrors.CodeServiceUnavailable:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// ExitWithCode logs err with the exit code metadata and exits.
// The logger may be nil for failures before logging is set up.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}
	if logger == nil {
		ExitWithCodeStderr(exitCode, msg, err)
		return
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	if envelope, ok := err.(*errors.ErrorEnvelope); ok {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	}
	fields = append(fields, zap.Error(err))
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr writes to stderr without a logger.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	switch envelope, isEnvelope := err.(*errors.ErrorEnvelope); {
	case isEnvelope:
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %s (correlation: %s)\n", msg, envelope.Code, envelope.Message, envelope.CorrelationID)
	case err != nil:
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}

	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		os.Exit(int(exitCode))
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}
