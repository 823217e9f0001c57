package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"urenlogger/internal/config"
	"urenlogger/internal/discord"
)

var (
	deployGuild  string
	deployGlobal bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy-commands",
	Short: "Register the slash commands with Discord",
	Long: `Overwrites the application's slash commands. Commands go to
DISCORD_GUILD_ID (or --guild) unless --global is given.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployGuild, "guild", "", "Guild ID (default DISCORD_GUILD_ID)")
	deployCmd.Flags().BoolVar(&deployGlobal, "global", false, "Deploy globally instead of to one guild")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig((*config.Config).ValidateCommands)
	if err != nil {
		return err
	}

	guildID := deployGuild
	if guildID == "" {
		guildID = cfg.DiscordGuildID
	}
	if deployGlobal {
		guildID = ""
	} else if guildID == "" {
		return fmt.Errorf("no guild given: set DISCORD_GUILD_ID, pass --guild or use --global")
	}

	session, err := discord.NewSession(cfg.DiscordBotToken)
	if err != nil {
		return err
	}
	cmds, err := discord.DeployCommands(cmd.Context(), session, cfg.DiscordApplicationID, guildID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	target := "globally"
	if guildID != "" {
		target = "to guild " + guildID
	}
	fmt.Fprintf(out, "Deployed %d commands %s\n", len(cmds), target)
	for _, c := range cmds {
		fmt.Fprintf(out, "  /%s\t%s\n", c.Name, c.Description)
	}
	return nil
}
