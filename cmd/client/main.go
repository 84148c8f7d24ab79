// The offline client: downloads courses into a local sqlite cache, plays
// lessons without a connection, and syncs completed sessions back to the
// server when one is available.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/lingo-learn/backend/internal/offline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	store, err := offline.Open(cachePath())
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer store.Close()

	api := offline.NewAPIClient(serverURL(), os.Getenv("LINGO_TOKEN"))

	switch os.Args[1] {
	case "download":
		runDownload(store, api, os.Args[2:])
	case "play":
		runPlay(store, os.Args[2:])
	case "sync":
		runSync(store, api)
	case "status":
		runStatus(store)
	case "cleanup":
		runCleanup(store, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: client <command> [flags]

Commands:
  download -course N   download a course for offline use
  play -lesson N       play a downloaded lesson
  sync                 upload pending offline sessions
  status               show cache and pending-sync state
  cleanup -days N      remove cached content older than N days`)
}

func cachePath() string {
	if p := os.Getenv("LINGO_CACHE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "lingo-cache.db"
	}
	return filepath.Join(home, ".lingo", "cache.db")
}

func serverURL() string {
	if u := os.Getenv("LINGO_SERVER"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func runDownload(store *offline.Store, api *offline.APIClient, args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "course ID to download")
	fs.Parse(args)
	if *courseID == 0 {
		log.Fatal("download: -course is required")
	}

	err := store.DownloadCourse(*courseID, api, func(ev offline.DownloadEvent) {
		if ev.Done {
			fmt.Printf("Done: %d/%d lessons cached\n", ev.LessonsDone, ev.LessonsTotal)
			return
		}
		fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.CurrentLesson)
	})
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}
}

func runPlay(store *offline.Store, args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	lessonID := fs.Int64("lesson", 0, "lesson ID to play")
	fs.Parse(args)
	if *lessonID == 0 {
		log.Fatal("play: -lesson is required")
	}

	runner, err := offline.NewRunner(store, *lessonID)
	if err != nil {
		log.Fatalf("Cannot start lesson: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		ex := runner.Current()
		if ex == nil {
			break
		}

		fmt.Printf("\n%s\n", ex.Question)
		for i, opt := range ex.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
		fmt.Print("> ")

		started := time.Now()
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("Read answer: %v", err)
		}
		answer := strings.TrimSpace(line)
		elapsed := time.Since(started).Milliseconds()

		result, err := runner.Submit(answer, elapsed)
		if err != nil {
			log.Fatalf("Submit answer: %v", err)
		}
		if result.IsCorrect {
			fmt.Printf("Correct! +%d XP\n", result.XPEarned)
		} else {
			fmt.Printf("Wrong. %s\n", result.Explanation)
		}
	}

	summary := runner.Summary()
	fmt.Printf("\nLesson complete: %d/%d correct (%d%%), %d XP\n",
		summary.ExercisesCorrect, summary.ExercisesCompleted, summary.Accuracy, summary.XPEarned)
	fmt.Println("Results saved locally; run 'client sync' when online.")
}

func runSync(store *offline.Store, api *offline.APIClient) {
	coordinator := offline.NewCoordinator(store, api)

	report, err := coordinator.SyncOfflineProgress()
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}
	fmt.Printf("Synced %d session(s), %d failed, %d XP confirmed\n",
		report.Synced, report.Failed, report.XPEarned)

	if report.Failed == 0 {
		return
	}

	// Keep retrying on a schedule while the process runs in case the
	// connection comes back.
	fmt.Println("Retrying failed sessions every 5 minutes; Ctrl-C to stop.")
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(5).Minutes().Do(func() {
		report, err := coordinator.SyncOfflineProgress()
		if err != nil {
			log.Printf("Sync attempt failed: %v", err)
			return
		}
		if report.Failed == 0 {
			fmt.Println("All sessions synced.")
			os.Exit(0)
		}
	})
	scheduler.StartBlocking()
}

func runStatus(store *offline.Store) {
	usage, err := store.GetStorageUsage()
	if err != nil {
		log.Fatalf("Status failed: %v", err)
	}
	downloaded, err := store.DownloadedCourses()
	if err != nil {
		log.Fatalf("Status failed: %v", err)
	}

	fmt.Printf("Courses cached:   %d\n", usage.CourseCount)
	fmt.Printf("Lessons cached:   %d\n", usage.LessonCount)
	fmt.Printf("Pending syncs:    %d\n", usage.PendingCount)
	fmt.Printf("Content size:     %d bytes\n", usage.ContentBytes)
	fmt.Printf("Progress size:    %d bytes\n", usage.ProgressBytes)
	for id, when := range downloaded {
		fmt.Printf("  course %s downloaded %s\n", id, when)
	}
}

func runCleanup(store *offline.Store, args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "remove content older than this many days")
	fs.Parse(args)

	removed, err := store.CleanupExpiredContent(time.Duration(*days) * 24 * time.Hour)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("Removed %d cached item(s); pending progress untouched\n", removed)
}
