// Command inspect prints one conversation stored in a BadgerDB directory, newest first.
package main

import (
	"flag"
	"fmt"
	"log"
	"messenger/domain"
	"messenger/repositories"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	a := flag.String("a", "", "First party of the conversation")
	b := flag.String("b", "", "Second party of the conversation")
	limit := flag.Int("limit", 50, "Maximum number of messages per page")
	cursor := flag.String("cursor", "", "Cursor printed by a previous page")
	flag.Parse()

	if *a == "" || *b == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, logs.GetLoggerFromString("WARN"), nil)
	var from *string
	if *cursor != "" {
		from = cursor
	}
	messages, next, err := repository.Recent(domain.Identity(*a), domain.Identity(*b), from, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "ID", "Sender", "Receiver", "Text"})
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

	for _, m := range messages {
		// The first 8 characters are enough to tell messages apart
		id := m.ID.String()[:8]
		table.Append([]string{
			m.SentAt.UTC().Format(time.RFC3339Nano),
			id,
			m.Sender.String(),
			m.Receiver.String(),
			strings.ReplaceAll(m.Text, "\n", " "),
		})
	}
	table.Render()

	summary := fmt.Sprintf("%d message(s) between %s and %s", len(messages), *a, *b)
	fmt.Println(color.New(color.FgGreen).Render(summary))
	if next != nil && *next != "" && len(messages) == *limit {
		fmt.Println(color.New(color.FgCyan).Render("next page: -cursor " + *next))
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
