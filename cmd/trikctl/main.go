package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/msgtrik/trik/internal/chat"
	"github.com/msgtrik/trik/internal/config"
	"github.com/msgtrik/trik/internal/gateway"
	"github.com/msgtrik/trik/internal/session"
	"go.uber.org/zap"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	serverFlag := flag.String("server", "", "server URL (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fatalf("error: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(session.ConfigPath())
	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}

	if err := session.EnsureDir(sessionName); err != nil {
		fatalf("error: %v", err)
	}
	snap, err := session.OpenSnapshot(session.SnapshotPath(sessionName))
	if err != nil {
		fatalf("error: session %q is in use or unreadable: %v", sessionName, err)
	}
	defer func() { _ = snap.Close() }()

	gw := gateway.New(cfg.ServerURL, snap, nil, zap.NewNop())
	gw.PageLimit = cfg.PageLimit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		cmdLogin(ctx, gw, args[1:], *jsonFlag)
	case "logout":
		cmdLogout(gw)
	case "whoami":
		cmdWhoami(snap, *jsonFlag)
	case "chats":
		cmdChats(ctx, gw, *jsonFlag)
	case "history":
		cmdHistory(ctx, gw, args[1:], *jsonFlag)
	case "send":
		cmdSend(ctx, gw, args[1:], *jsonFlag)
	case "read":
		cmdRead(ctx, gw, args[1:])
	case "search":
		cmdSearch(ctx, gw, args[1:], *jsonFlag)
	case "profile":
		cmdProfile(ctx, gw, args[1:], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: trikctl [--session <name>] [--server <url>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login <email> <password>   Sign in and persist the session")
	fmt.Fprintln(os.Stderr, "  logout                     Drop the persisted session")
	fmt.Fprintln(os.Stderr, "  whoami                     Show the logged-in user")
	fmt.Fprintln(os.Stderr, "  chats                      List recent conversations")
	fmt.Fprintln(os.Stderr, "  history <email> [page]     Show messages with a partner")
	fmt.Fprintln(os.Stderr, "  send <email> <text>        Send a message")
	fmt.Fprintln(os.Stderr, "  read <email>               Mark a conversation read")
	fmt.Fprintln(os.Stderr, "  search <email>             Look up a user by email")
	fmt.Fprintln(os.Stderr, "  profile [k=v ...]          Show or update the profile")
	fmt.Fprintln(os.Stderr, "                             keys: name, gender, dob, avatar (file path)")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("error: %v", err)
	}
}

// resolvePartner turns an email address into a chat partner.
func resolvePartner(ctx context.Context, gw *gateway.Client, email string) *chat.ChatUser {
	u, err := gw.SearchUser(ctx, email)
	if err != nil {
		fatalf("error: no user with email %q: %v", email, err)
	}
	return u
}

func cmdLogin(ctx context.Context, gw *gateway.Client, args []string, jsonOut bool) {
	if len(args) != 2 {
		fatalf("usage: trikctl login <email> <password>")
	}
	u, err := gw.Login(ctx, args[0], args[1])
	if err != nil {
		fatalf("error: login failed: %v", err)
	}
	if jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("Logged in as %s (id %d)\n", u.Email, u.ID)
}

func cmdLogout(gw *gateway.Client) {
	if err := gw.Logout(); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Println("Logged out")
}

func cmdWhoami(snap *session.Snapshot, jsonOut bool) {
	u, err := snap.Load()
	if err != nil {
		fatalf("error: %v", err)
	}
	if u == nil {
		fatalf("not logged in")
	}
	if jsonOut {
		outputJSON(u)
		return
	}
	name := u.Profile.Name
	if name == "" {
		name = "(no name)"
	}
	fmt.Printf("Email: %s\n", u.Email)
	fmt.Printf("Name:  %s\n", name)
	fmt.Printf("ID:    %d\n", u.ID)
}

func cmdChats(ctx context.Context, gw *gateway.Client, jsonOut bool) {
	chats, err := gw.RecentChats(ctx)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No conversations yet")
		return
	}
	for _, c := range chats {
		name := c.Profile.Name
		if name == "" {
			name = c.Email
		}
		line := name
		if c.UnreadCount > 0 {
			line = fmt.Sprintf("%s (%d unread)", line, c.UnreadCount)
		}
		if c.LastMessage != nil {
			line = fmt.Sprintf("%s: %s", line, c.LastMessage.Content)
		}
		fmt.Println(line)
	}
}

func cmdHistory(ctx context.Context, gw *gateway.Client, args []string, jsonOut bool) {
	if len(args) < 1 || len(args) > 2 {
		fatalf("usage: trikctl history <email> [page]")
	}
	page := 1
	if len(args) == 2 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p < 1 {
			fatalf("error: page must be a positive number")
		}
		page = p
	}

	partner := resolvePartner(ctx, gw, args[0])
	pg, err := gw.FetchMessages(ctx, partner.ID, page)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(pg)
		return
	}
	for _, m := range pg.Messages {
		who := args[0]
		if m.SenderID != partner.ID {
			who = "you"
		}
		fmt.Printf("[%s] %s: %s\n", m.Timestamp, who, m.Content)
	}
	fmt.Printf("-- page %d of %d --\n", pg.Pagination.Page, pg.Pagination.Pages)
}

func cmdSend(ctx context.Context, gw *gateway.Client, args []string, jsonOut bool) {
	if len(args) < 2 {
		fatalf("usage: trikctl send <email> <text>")
	}
	partner := resolvePartner(ctx, gw, args[0])

	text := args[1]
	for _, part := range args[2:] {
		text += " " + part
	}

	msg, err := gw.SendMessage(ctx, partner.ID, text)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			fatalf("error: server rejected message: %s", apiErr.Detail)
		}
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(msg)
		return
	}
	fmt.Printf("Sent message %d to %s\n", msg.ID, args[0])
}

func cmdRead(ctx context.Context, gw *gateway.Client, args []string) {
	if len(args) != 1 {
		fatalf("usage: trikctl read <email>")
	}
	partner := resolvePartner(ctx, gw, args[0])
	if err := gw.MarkRead(ctx, partner.ID); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Marked conversation with %s read\n", args[0])
}

func cmdProfile(ctx context.Context, gw *gateway.Client, args []string, jsonOut bool) {
	me, err := gw.Me(ctx)
	if err != nil {
		fatalf("error: %v", err)
	}

	if len(args) == 0 {
		if jsonOut {
			outputJSON(me)
			return
		}
		fmt.Printf("Name:   %s\n", me.Profile.Name)
		fmt.Printf("Email:  %s\n", me.Email)
		fmt.Printf("Gender: %s\n", me.Profile.Gender)
		fmt.Printf("DOB:    %s\n", me.Profile.DOB)
		fmt.Printf("Avatar: %s\n", me.Profile.AvatarURL)
		return
	}

	profile := me.Profile
	avatarPath := ""
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fatalf("error: expected key=value, got %q", arg)
		}
		switch key {
		case "name":
			profile.Name = value
		case "gender":
			profile.Gender = value
		case "dob":
			profile.DOB = value
		case "avatar":
			avatarPath = value
		default:
			fatalf("error: unknown profile key %q", key)
		}
	}

	if avatarPath != "" {
		url, err := gw.UploadAvatar(ctx, avatarPath)
		if err != nil {
			fatalf("error: avatar upload failed: %v", err)
		}
		profile.AvatarURL = url
	}

	updated, err := gw.UpdateProfile(ctx, profile)
	if err != nil {
		fatalf("error: %v", err)
	}
	if jsonOut {
		outputJSON(updated)
		return
	}
	fmt.Println("Profile updated")
}

func cmdSearch(ctx context.Context, gw *gateway.Client, args []string, jsonOut bool) {
	if len(args) != 1 {
		fatalf("usage: trikctl search <email>")
	}
	u := resolvePartner(ctx, gw, args[0])
	if jsonOut {
		outputJSON(u)
		return
	}
	name := u.Profile.Name
	if name == "" {
		name = "(no name)"
	}
	fmt.Printf("%s <%s> (id %d)\n", name, u.Email, u.ID)
}
