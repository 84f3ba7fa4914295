package services

import (
	"log"
	"sync"
	"time"

	"neoforum/internal/db"
	"neoforum/internal/models"
	"neoforum/internal/utils"

	"gorm.io/gorm"
)

// Reconciler recomputes the denormalized post counters (upvotes, downvotes,
// comment_count) from the live ledgers and refreshes the hot score used to
// order listings. The counters are a materialized projection: incremental
// updates keep them fresh, this worker keeps them honest.
type Reconciler struct {
	db      *gorm.DB
	queue   chan uint // post IDs awaiting a recount
	pending map[uint]bool
	mu      sync.Mutex
}

var (
	reconciler     *Reconciler
	reconcilerOnce sync.Once
)

// GetReconciler returns the process-wide reconciler, starting its worker
// on first use.
func GetReconciler() *Reconciler {
	reconcilerOnce.Do(func() {
		reconciler = NewReconciler(db.DB)
		go reconciler.worker()
	})
	return reconciler
}

func NewReconciler(gdb *gorm.DB) *Reconciler {
	return &Reconciler{
		db:      gdb,
		queue:   make(chan uint, 1000), // buffered so callers never block
		pending: make(map[uint]bool),
	}
}

// Schedule queues a post for recount. Duplicate requests for a post that
// is already queued are dropped.
func (r *Reconciler) Schedule(postID uint) {
	r.mu.Lock()
	if r.pending[postID] {
		r.mu.Unlock()
		return
	}
	r.pending[postID] = true
	r.mu.Unlock()

	select {
	case r.queue <- postID:
	default:
		// Queue full; drop the request, the nightly sweep will catch it
		r.mu.Lock()
		delete(r.pending, postID)
		r.mu.Unlock()
		log.Printf("reconcile queue full, skipping post %d", postID)
	}
}

func (r *Reconciler) worker() {
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case postID := <-r.queue:
			batch = append(batch, postID)
			if len(batch) >= 50 {
				r.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *Reconciler) processBatch(postIDs []uint) {
	for _, postID := range postIDs {
		if err := r.Recount(postID); err != nil {
			log.Printf("recount of post %d failed: %v", postID, err)
		}
		r.mu.Lock()
		delete(r.pending, postID)
		r.mu.Unlock()
	}
}

// Recount replaces the post's counters with the true ledger counts and
// refreshes its hot score.
func (r *Reconciler) Recount(postID uint) error {
	var post models.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		return err
	}

	var upvotes, downvotes, comments int64
	r.db.Model(&models.Vote{}).Where("post_id = ? AND value = 1", postID).Count(&upvotes)
	r.db.Model(&models.Vote{}).Where("post_id = ? AND value = -1", postID).Count(&downvotes)
	r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments)

	score := utils.HotScore(post.CreatedAt, int(upvotes), int(downvotes), int(comments), post.Views)

	return r.db.Model(&post).UpdateColumns(map[string]interface{}{
		"upvotes":       upvotes,
		"downvotes":     downvotes,
		"comment_count": comments,
		"hot_score":     score,
	}).Error
}

// StartNightlySweep recounts recent and highest-ranked posts every night,
// catching any drift the incremental path missed.
func (r *Reconciler) StartNightlySweep() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}
			time.Sleep(time.Until(next))

			log.Println("nightly counter sweep starting")
			r.sweep()
			log.Println("nightly counter sweep done")
		}
	}()
}

func (r *Reconciler) sweep() {
	processed := make(map[uint]bool)
	count := 0

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recent []models.Post
	r.db.Where("created_at >= ?", sevenDaysAgo).Select("id").Find(&recent)
	for _, p := range recent {
		if err := r.Recount(p.ID); err == nil {
			count++
		}
		processed[p.ID] = true
	}

	var top []models.Post
	r.db.Order("hot_score DESC").Limit(30).Select("id").Find(&top)
	for _, p := range top {
		if !processed[p.ID] {
			if err := r.Recount(p.ID); err == nil {
				count++
			}
		}
	}

	log.Printf("recounted %d posts", count)
}
