package main

import (
	"chat-core/domain"
	"chat-core/repositories"
	"chat-core/store"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	Colours        bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	dbPath := flag.String("db", lo.Ternary(config.BadgerFilepath != "", config.BadgerFilepath, database.DefaultPath), "Path to badger DB")
	table := flag.String("table", "all", "users, channels, dms, messages or all")
	flag.Parse()

	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewSnapshotRepository(db, logs.GetLoggerFromString("WARN"))
	snap, found, err := repository.Load()
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		fmt.Println("No snapshot stored yet")
		return
	}
	render(os.Stdout, snap, *table, config.Colours)
}

func render(w io.Writer, snap store.Snapshot, table string, colours bool) {
	sections := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"users", []string{"ID", "Handle", "Name", "Email", "Permission", "Removed"}, userRows(snap)},
		{"channels", []string{"ID", "Name", "Public", "Owners", "Members", "Messages"}, channelRows(snap)},
		{"dms", []string{"ID", "Name", "Members", "Messages"}, dmRows(snap)},
		{"messages", []string{"ID", "Container", "Author", "Sent", "Pinned", "Reacts", "Content"}, messageRows(snap)},
	}
	for _, s := range sections {
		if table != "all" && table != s.name {
			continue
		}
		title := fmt.Sprintf("== %s (%d) ==", strings.ToUpper(s.name), len(s.rows))
		if colours {
			title = color.New(color.FgCyan, color.OpBold).Render(title)
		}
		fmt.Fprintln(w, title)
		t := newTable(w)
		t.SetHeader(s.header)
		t.AppendBulk(s.rows)
		t.Render()
		fmt.Fprintln(w)
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func userRows(snap store.Snapshot) [][]string {
	return lo.Map(snap.Users, func(u domain.User, _ int) []string {
		return []string{
			itoa(int(u.ID)), u.Handle, u.FirstName + " " + u.LastName, u.Email,
			lo.Ternary(u.Permission == domain.PermissionOwner, "owner", "member"),
			strconv.FormatBool(u.Removed),
		}
	})
}

func channelRows(snap store.Snapshot) [][]string {
	return lo.Map(snap.Channels, func(ch domain.Channel, _ int) []string {
		return []string{
			itoa(ch.ID), ch.Name, strconv.FormatBool(ch.IsPublic),
			ids(ch.Owners), ids(ch.Members), itoa(len(ch.History)),
		}
	})
}

func dmRows(snap store.Snapshot) [][]string {
	return lo.Map(snap.Dms, func(dm domain.Dm, _ int) []string {
		return []string{itoa(dm.ID), dm.Name, ids(dm.Members), itoa(len(dm.History))}
	})
}

func messageRows(snap store.Snapshot) [][]string {
	return lo.Map(snap.Messages, func(m domain.Message, _ int) []string {
		content := m.Content
		if len(content) > 60 {
			content = content[:60] + "..."
		}
		reacts := lo.SumBy(m.Reacts, func(r domain.React) int { return len(r.UserIDs) })
		return []string{
			itoa(int(m.ID)), fmt.Sprintf("%s:%d", m.Container.Kind, m.Container.ID), itoa(int(m.AuthorID)),
			time.Unix(m.CreatedAt, 0).UTC().Format(time.DateTime), strconv.FormatBool(m.Pinned),
			itoa(reacts), content,
		}
	})
}

func ids(set domain.UserSet) string {
	return strings.Join(lo.Map(set, func(id domain.UserID, _ int) string { return itoa(int(id)) }), ",")
}

func itoa(i int) string { return strconv.Itoa(i) }
