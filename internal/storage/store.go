package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	calendarBucket = []byte("calendar_feeds")
	newsBucket     = []byte("news_feeds")
	metaBucket     = []byte("meta")

	newsSeededKey = []byte("news_seeded")
)

var ErrNotFound = errors.New("subscription not found")

// DefaultNewsFeeds are added to an empty news list the first time the
// store is opened.
var DefaultNewsFeeds = []Subscription{
	{URL: "https://news.ycombinator.com/rss", Name: "Hacker News"},
	{URL: "https://www.theverge.com/rss/index.xml", Name: "The Verge"},
}

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{calendarBucket, newsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func bucketFor(kind Kind) ([]byte, error) {
	switch kind {
	case KindCalendar:
		return calendarBucket, nil
	case KindNews:
		return newsBucket, nil
	default:
		return nil, fmt.Errorf("unknown subscription kind %q", kind)
	}
}

// AddSubscription inserts sub or renames the existing entry with the same
// URL. The first AddedAt is kept on rename so list order is stable.
func (s *Store) AddSubscription(kind Kind, sub Subscription) error {
	name, err := bucketFor(kind)
	if err != nil {
		return err
	}
	if sub.URL == "" {
		return fmt.Errorf("subscription URL is empty")
	}
	if sub.Name == "" {
		sub.Name = sub.URL
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		if existing := b.Get([]byte(sub.URL)); existing != nil {
			var prev Subscription
			if err := json.Unmarshal(existing, &prev); err == nil {
				sub.AddedAt = prev.AddedAt
			}
		}
		if sub.AddedAt.IsZero() {
			sub.AddedAt = time.Now()
		}
		data, err := json.Marshal(sub)
		if err != nil {
			return err
		}
		return b.Put([]byte(sub.URL), data)
	})
}

func (s *Store) RemoveSubscription(kind Kind, url string) error {
	name, err := bucketFor(kind)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(name)
		if b.Get([]byte(url)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(url))
	})
}

// Subscriptions lists the subscriptions of one kind, oldest first.
func (s *Store) Subscriptions(kind Kind) ([]Subscription, error) {
	name, err := bucketFor(kind)
	if err != nil {
		return nil, err
	}

	var subs []Subscription
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(name).ForEach(func(_ []byte, v []byte) error {
			var sub Subscription
			if err := json.Unmarshal(v, &sub); err != nil {
				return nil
			}
			subs = append(subs, sub)
			return nil
		})
	})
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].AddedAt.Equal(subs[j].AddedAt) {
			return subs[i].URL < subs[j].URL
		}
		return subs[i].AddedAt.Before(subs[j].AddedAt)
	})
	return subs, err
}

// SeedDefaultNews adds DefaultNewsFeeds once. Later calls are no-ops even
// if the user has since removed every news feed.
func (s *Store) SeedDefaultNews() (bool, error) {
	seeded := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta.Get(newsSeededKey) != nil {
			return nil
		}

		b := tx.Bucket(newsBucket)
		if k, _ := b.Cursor().First(); k == nil {
			base := time.Now()
			for i, sub := range DefaultNewsFeeds {
				sub.AddedAt = base.Add(time.Duration(i) * time.Millisecond)
				data, err := json.Marshal(sub)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(sub.URL), data); err != nil {
					return err
				}
			}
			seeded = true
		}
		return meta.Put(newsSeededKey, []byte("1"))
	})
	return seeded, err
}
