// Package discord is the outbound platform collaborator. It implements the
// narrow interfaces the feature services declare: role grants after shop
// purchases, drawing-winner announcements and DMs, and member role reads for
// host-eligibility checks. Inbound command handling lives with the bot
// frontend, not here.
package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/features/drawings"
)

// Client wraps a discordgo session for outbound REST calls.
type Client struct {
	session *discordgo.Session
}

// NewClient opens a Discord session with the bot token.
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Client{session: session}, nil
}

// Session exposes the underlying session for the command frontend.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// Open connects the gateway. Close shuts it down.
func (c *Client) Open() error  { return c.session.Open() }
func (c *Client) Close() error { return c.session.Close() }

func id(v int64) string { return strconv.FormatInt(v, 10) }

// GrantRole adds a guild role to a member. Satisfies shop.RoleGranter.
func (c *Client) GrantRole(ctx context.Context, guildID, userID, roleID int64) error {
	err := c.session.GuildMemberRoleAdd(id(guildID), id(userID), id(roleID),
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// MemberRoles returns the role IDs a guild member holds.
func (c *Client) MemberRoles(ctx context.Context, guildID, userID int64) ([]int64, error) {
	member, err := c.session.GuildMember(id(guildID), id(userID),
		discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch member: %w", err)
	}
	roles := make([]int64, 0, len(member.Roles))
	for _, r := range member.Roles {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		roles = append(roles, n)
	}
	return roles, nil
}

// IsAdministrator reports whether the member owns the guild or holds a role
// with the Administrator permission. Used as defense in depth next to the
// password session.
func (c *Client) IsAdministrator(ctx context.Context, guildID, userID int64) (bool, error) {
	guild, err := c.session.Guild(id(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("fetch guild: %w", err)
	}
	if guild.OwnerID == id(userID) {
		return true, nil
	}

	member, err := c.session.GuildMember(id(guildID), id(userID),
		discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("fetch member: %w", err)
	}
	roles, err := c.session.GuildRoles(id(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("fetch roles: %w", err)
	}

	byID := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}
	for _, rid := range member.Roles {
		if r, ok := byID[rid]; ok && r.Permissions&discordgo.PermissionAdministrator != 0 {
			return true, nil
		}
	}
	return false, nil
}

// AnnounceWinners posts the result embed in the drawing's channel and DMs
// each winner. Both are best effort: a refused DM must not fail the
// announcement, and the caller already treats announcement failure as
// non-fatal. Satisfies drawings.Announcer.
func (c *Client) AnnounceWinners(ctx context.Context, d *drawings.Drawing, winners []int64) error {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚔️ Tournament concluded: %s", d.PrizeName),
		Color: 0xC0A060,
	}
	if len(winners) == 0 {
		embed.Description = "The lists stood empty. No champion claims the purse."
	} else {
		mentions := ""
		for i, w := range winners {
			if i > 0 {
				mentions += ", "
			}
			mentions += "<@" + id(w) + ">"
		}
		embed.Description = fmt.Sprintf("Hail the champions: %s\nEach claims **%s gold**.",
			mentions, common.FormatGold(d.PrizeAmount))
	}

	_, err := c.session.ChannelMessageSendEmbed(id(d.ChannelID), embed,
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("announce winners: %w", err)
	}

	for _, w := range winners {
		if dmErr := c.dmWinner(ctx, w, d); dmErr != nil {
			log.WithError(dmErr).WithFields(log.Fields{
				"drawing": d.ID,
				"winner":  w,
			}).Debug("winner DM failed")
		}
	}
	return nil
}

func (c *Client) dmWinner(ctx context.Context, userID int64, d *drawings.Drawing) error {
	channel, err := c.session.UserChannelCreate(id(userID), discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = c.session.ChannelMessageSend(channel.ID,
		fmt.Sprintf("🏆 You have won the tournament **%s** and claim %s gold!",
			d.PrizeName, common.FormatGold(d.PrizeAmount)),
		discordgo.WithContext(ctx))
	return err
}
