package repository

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitbridge/internal/gitcli"
	"github.com/temirov/gitbridge/internal/gitparse"
)

const (
	versionFlagConstant      = "--version"
	configSubcommandConstant = "config"
	globalFlagConstant       = "--global"
	userNameSettingConstant  = "user.name"
	userEmailSettingConstant = "user.email"
)

// Identity is a committer name and email pair.
type Identity struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Email string `json:"email" yaml:"email" validate:"required"`
}

// ToolConfiguration describes the git installation discovered at startup. It is built once
// and handed to the facade; nothing in this package caches tool state globally.
type ToolConfiguration struct {
	ExecutablePath string    `json:"executable,omitempty" yaml:"executable,omitempty"`
	Version        string    `json:"version" yaml:"version"`
	User           *Identity `json:"user,omitempty" yaml:"user,omitempty"`
}

// Initialize reports the installed git version and the global identity when both name and
// email are configured. Any failure to run or read git yields nil instead of an error so the
// host can continue without version control support.
func Initialize(executionContext context.Context, runner GitRunner, executablePath string) *ToolConfiguration {
	if runner == nil {
		return nil
	}

	var versionOutput, userName, userEmail string
	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		output, versionError := runner.Run(groupContext, gitcli.Invocation{Arguments: []string{versionFlagConstant}})
		versionOutput = output
		return versionError
	})
	group.Go(func() error {
		userName = readGlobalSetting(groupContext, runner, userNameSettingConstant)
		return nil
	})
	group.Go(func() error {
		userEmail = readGlobalSetting(groupContext, runner, userEmailSettingConstant)
		return nil
	})
	if waitError := group.Wait(); waitError != nil {
		return nil
	}

	version, found := gitparse.ParseVersion(versionOutput)
	if !found {
		return nil
	}

	configuration := &ToolConfiguration{ExecutablePath: executablePath, Version: version}
	if len(userName) > 0 && len(userEmail) > 0 {
		configuration.User = &Identity{Name: userName, Email: userEmail}
	}
	return configuration
}

// readGlobalSetting returns a trimmed global setting, or empty when it is unset or unreadable.
func readGlobalSetting(executionContext context.Context, runner GitRunner, setting string) string {
	output, readError := runner.Run(executionContext, gitcli.Invocation{Arguments: []string{configSubcommandConstant, globalFlagConstant, setting}})
	if readError != nil {
		return ""
	}
	return strings.TrimSpace(output)
}
