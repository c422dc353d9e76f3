package discord

import (
	"time"
)

// runMaintenance prunes stale data once at start and then on every interval until the context ends.
func (d *Discord) runMaintenance() {
	t := time.NewTicker(d.config.maintenanceInt)
	defer t.Stop()
	for {
		d.maintain()
		select {
		case <-d.ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (d *Discord) maintain() {
	d.logger.Info("Running periodic maintenance tasks.")
	d.updatePresence(d.session, d.guildCount())

	cutoff := time.Now().Add(-d.config.rsvpRetention)
	n, err := d.storage.PruneRSVPs(d.ctx, cutoff)
	if err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to clean up old RSVP data: %s.", err)
		}
		return
	}
	d.logger.Infof("Cleaned up %d RSVP entries older than %s.", n, cutoff.Format(time.RFC3339))
}
