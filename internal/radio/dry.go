package radio

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"myradio/internal/icecast"
	"myradio/internal/models"
	"myradio/internal/stats"
)

// Simulate fetches the upstream once and prints what a sync cycle would
// record. Nothing is written.
func Simulate(ctx context.Context, src Source, out io.Writer) error {
	fmt.Fprintf(out, "\n--- 🧪 DRY SYNC ---\n")
	fmt.Fprintf(out, "Mount: %q (no state is written)\n", src.Mount())
	fmt.Fprintln(out, "--------------------------------------------------------------------------------")

	st, err := src.FetchStatus(ctx)
	if err != nil {
		kind, _ := icecast.KindOf(err)
		fmt.Fprintf(out, "❌ Upstream %s: %v\n", kind, err)
		return err
	}

	status := DeriveStatus(st)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SERVER\tHOST\tLOCATION\tSTATE\tLISTENERS\tPEAK\tBITRATE\tSAMPLERATE\tUPTIME")
	fmt.Fprintln(w, "------\t----\t--------\t-----\t---------\t----\t-------\t----------\t------")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
		truncate(status.Server.Version, 20),
		status.Server.Host,
		status.Server.Location,
		stateOf(status),
		status.Listeners,
		status.ListenerPeak,
		status.Bitrate,
		status.SampleRate,
		uptime(status.StreamStartedAt),
	)
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ARTIST\tTITLE\tGENRE")
	fmt.Fprintln(w, "------\t-----\t-----")
	if t := status.CurrentTrack; t != nil {
		fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(t.Artist, 25), truncate(t.Title, 35), t.Genre)
	} else {
		fmt.Fprintln(w, "---\t---\t---")
	}
	w.Flush()

	fmt.Fprintln(out, "\n✅ Dry sync complete.")
	return nil
}

func stateOf(s models.StreamStatus) string {
	if s.IsOnline {
		return models.StateLive
	}
	return models.StateOffline
}

func uptime(started *time.Time) string {
	if started == nil {
		return "-"
	}
	return stats.FormatUptime(int64(time.Since(*started) / time.Second))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}
