package leveling

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/revampbot/revampbot/internal/storage/model"
	"go.uber.org/zap"
)

// Store is the part of the storage layer the tracker needs.
type Store interface {
	UserXP(ctx context.Context, userID, guildID model.Snowflake) (*model.UserXP, error)
	UpdateUserXP(ctx context.Context, userID, guildID model.Snowflake, xp int64, level int) error
}

type Config struct {
	MaxXPPerMessage int
	Cooldown        time.Duration
}

// Award describes the outcome of one rewarded message.
type Award struct {
	UserID        model.Snowflake
	GuildID       model.Snowflake
	Gained        int64
	XP            int64
	Level         int
	PreviousLevel int
}

func (a Award) LeveledUp() bool {
	return a.Level > a.PreviousLevel
}

// Tracker hands out message XP, at most once per cooldown window for every member of a guild.
type Tracker struct {
	logger *zap.Logger
	store  Store
	config Config

	cooldowns *cache.Cache

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewTracker(l *zap.Logger, store Store, c Config) *Tracker {
	if c.MaxXPPerMessage < 1 {
		c.MaxXPPerMessage = 1
	}
	cleanup := c.Cooldown * 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &Tracker{
		logger:    l,
		store:     store,
		config:    c,
		cooldowns: cache.New(c.Cooldown, cleanup),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func cooldownKey(guildID, userID model.Snowflake) string {
	return fmt.Sprintf("%d:%d", guildID, userID)
}

func (t *Tracker) roll() int64 {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return int64(t.rng.Intn(t.config.MaxXPPerMessage)) + 1
}

// OnCooldown reports whether the member was rewarded within the current cooldown window.
func (t *Tracker) OnCooldown(guildID, userID model.Snowflake) bool {
	_, found := t.cooldowns.Get(cooldownKey(guildID, userID))
	return found
}

// Award grants message XP to a member. The boolean is false when the member is still on cooldown, in
// which case nothing is stored.
func (t *Tracker) Award(ctx context.Context, guildID, userID model.Snowflake) (Award, bool, error) {
	key := cooldownKey(guildID, userID)
	if t.config.Cooldown > 0 {
		// Add fails when the key is present, so concurrent messages from one member race for a single slot.
		if err := t.cooldowns.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
			return Award{}, false, nil
		}
	}

	current, err := t.store.UserXP(ctx, userID, guildID)
	if err != nil {
		t.cooldowns.Delete(key)
		return Award{}, false, err
	}

	a := Award{UserID: userID, GuildID: guildID, Gained: t.roll(), PreviousLevel: 1}
	if current != nil {
		a.XP = current.XP
		if current.Level > 1 {
			a.PreviousLevel = current.Level
		}
	}
	a.XP += a.Gained
	a.Level = LevelForXP(a.XP)
	if a.Level < a.PreviousLevel {
		a.Level = a.PreviousLevel
	}

	if err := t.store.UpdateUserXP(ctx, userID, guildID, a.XP, a.Level); err != nil {
		// nothing was stored, so the message does not count against the cooldown
		t.cooldowns.Delete(key)
		return Award{}, false, err
	}
	if a.LeveledUp() {
		t.logger.Sugar().Debugf("User %d reached level %d in guild %d.", userID, a.Level, guildID)
	}
	return a, true, nil
}
