package grid

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellgrid/internal/clock"
)

var _ = Describe("SetLogger", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		DeferCleanup(SetLogger, (*slog.Logger)(nil))
	})

	It("falls back to a silent logger on nil", func() {
		SetLogger(nil)
		Expect(Logger().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})

	It("logs queued-draw drains at debug", func() {
		opts := DefaultOptions()
		opts.Width, opts.Height = 400, 400
		opts.Clock = clock.NewMock(time.Unix(1000, 0))
		opts.TickDuration = time.Hour
		r := &recorder{tick: func(c Canvas, _ int) { c.DrawCell(0, 0, red) }}
		e, err := New(r, opts)
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()
		e.Start()

		e.StartTicking(true)
		Eventually(e.Scheduler().Busy).Should(BeFalse())
		Expect(e.Frame(0).Drained).To(Equal(1))
		Expect(buf.String()).To(ContainSubstring(`level=DEBUG msg="grid: drained queued draws" count=1 pending=0`))
	})
})
