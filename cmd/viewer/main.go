// Viewer renders the stored tasks and the per-student split as terminal
// tables, straight from the database. Read-only: it can run next to a live
// server holding the badger lock.
package main

import (
	"fmt"
	"log"
	"os"

	"campus-desk/domain"
	"campus-desk/internal"
	"campus-desk/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the server) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	tasks, err := repositories.NewTaskRepository(db).ListAll()
	if err != nil {
		log.Fatalf("Failed to list tasks: %v", err)
	}
	students, err := repositories.NewUserRepository(db).ListByRole("student")
	if err != nil {
		log.Fatalf("Failed to list students: %v", err)
	}

	renderTasks(tasks)
	fmt.Println()
	renderPerformance(students, tasks)
}

func renderTasks(tasks []domain.Task) {
	color.New(color.BgBlack, color.FgGreen).Println("TASKS")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Subject", "Type", "Assigned To", "Status", "Deadline"})
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

	for _, task := range tasks {
		deadline := ""
		if !task.Deadline.IsZero() {
			deadline = task.Deadline.Format("2006-01-02 15:04")
		}
		displayID := task.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{
			displayID,
			task.Title,
			task.Subject,
			string(task.Type),
			task.AssignedTo,
			string(task.Status),
			deadline,
		})
	}
	table.Render()
}

func renderPerformance(students []repositories.User, tasks []domain.Task) {
	color.New(color.BgBlack, color.FgGreen).Println("STUDENTS")

	done := map[string]int{}
	pending := map[string]int{}
	for _, task := range tasks {
		if task.Status == domain.TaskDone {
			done[task.AssignedTo]++
		} else {
			pending[task.AssignedTo]++
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Name", "Completed", "Pending"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, student := range students {
		table.Append([]string{
			student.Username,
			student.Name,
			fmt.Sprintf("%d", done[student.Username]),
			fmt.Sprintf("%d", pending[student.Username]),
		})
	}
	table.Render()
}
