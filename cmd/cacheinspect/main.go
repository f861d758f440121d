package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/keydashapp/keydash-sync/internal/domain"
)

func main() {
	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		cachePath = os.ExpandEnv("$HOME/KeyDash/cache")
	}

	opts := badger.DefaultOptions(cachePath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Cache Inspection ===")
	fmt.Println()

	var leaderboard []domain.LeaderboardEntry
	var sessions []domain.SessionRecord
	var answers []domain.AnswerRecord
	streakOwners := 0
	challengeOwners := 0

	err = db.View(func(txn *badger.Txn) error {
		readValue := func(key string, out any) bool {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return false
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, out)
			}) == nil
		}

		readValue("leaderboard", &leaderboard)
		readValue("sessions", &sessions)
		readValue("answer-history", &answers)

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, "daily-streak:"):
				streakOwners++
				var record domain.StreakRecord
				if readValue(key, &record) {
					fmt.Printf("Streak: %s\n", record.Email)
					fmt.Printf("  Current: %d days (longest %d)\n", record.CurrentStreak, record.LongestStreak)
					fmt.Printf("  Last completed: %s\n", record.LastCompletedDate)
					fmt.Printf("  Badges: %s\n", strings.Join(record.Badges, ", "))
					fmt.Println()
				}
			case strings.HasPrefix(key, "daily-challenge:"):
				challengeOwners++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating cache: %v", err)
	}

	for i, e := range leaderboard {
		if i >= 5 {
			fmt.Printf("... and %d more leaderboard entries\n", len(leaderboard)-5)
			break
		}
		fmt.Printf("Leaderboard [%d]: %s score=%d accuracy=%.1f\n", i+1, e.Name, e.Score, e.Accuracy)
	}
	fmt.Println()

	fmt.Println("=== Summary ===")
	fmt.Printf("Leaderboard entries: %d\n", len(leaderboard))
	fmt.Printf("Session records: %d\n", len(sessions))
	fmt.Printf("Answer records: %d\n", len(answers))
	fmt.Printf("Owners with streaks: %d\n", streakOwners)
	fmt.Printf("Owners with challenge history: %d\n", challengeOwners)

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	if len(answers) > 0 {
		fmt.Printf("Overall answer accuracy: %.1f%%\n", 100*float64(correct)/float64(len(answers)))
	}
}
