package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tokenmigrate/internal/config"
)

const (
	subcommandsHeader = "\n\nSubcommands:\n"
	environmentHeader = "\n\nEnvironment:\n"
)

// envHelp lists the environment overrides shown in the root help. Values
// set here win over config.yaml and lose to flags.
//
//nolint:gochecknoglobals // Static help table
var envHelp = []struct{ name, usage string }{
	{config.EnvHome, "home directory holding config.yaml, .env and the cache"},
	{config.EnvChain, "wallet chain key, name or ID"},
	{config.EnvPrivateKey, "hex private key that signs burns"},
	{config.EnvMnemonic, "BIP39 phrase that signs burns"},
	{config.EnvExplorerAPIKey, "Etherscan v2 API key"},
	{config.EnvCoinID, "CoinGecko coin ID of the token"},
	{config.EnvOutputFormat, "text, json or auto"},
	{config.EnvLogLevel, "off, error, info or debug"},
	{config.EnvOTelEndpoint, "OTLP HTTP endpoint for traces"},
}

// walkCommands visits every command in the tree depth-first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichLong completes a command's Long description: the root gets the
// environment overrides, other parents the list of their subcommands.
// Running it twice leaves the text unchanged.
func enrichLong(cmd *cobra.Command) {
	switch {
	case !cmd.HasParent():
		if !strings.Contains(cmd.Long, environmentHeader) {
			cmd.Long += environmentHeader + environmentList()
		}
	case cmd.HasSubCommands():
		if !strings.Contains(cmd.Long, subcommandsHeader) {
			cmd.Long += subcommandsHeader + subcommandList(cmd)
		}
	}
}

func subcommandList(cmd *cobra.Command) string {
	width := 0
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			width = max(width, len(sub.Name()))
		}
	}

	var sb strings.Builder
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			fmt.Fprintf(&sb, "  %-*s  %s\n", width, sub.Name(), sub.Short)
		}
	}
	return sb.String()
}

func environmentList() string {
	width := 0
	for _, e := range envHelp {
		width = max(width, len(e.name))
	}

	var sb strings.Builder
	for _, e := range envHelp {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, e.name, e.usage)
	}
	return sb.String()
}
