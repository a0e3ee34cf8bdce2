package extract

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/ocr/ocrtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testVariants returns n blank preprocessing variants of a 400x200 canvas.
func testVariants(n int) []imaging.Variant {
	out := make([]imaging.Variant, n)
	for i := range out {
		out[i] = imaging.Variant{Name: "v", Image: image.NewGray(image.Rect(0, 0, 400, 200))}
	}
	return out
}

func region(name string) layout.Region {
	return layout.Region{Name: name, X: 50, Y: 40, Width: 200, Height: 40}
}

func newExtractor(engine ocr.Engine, opts ...Option) *Extractor {
	return New(engine, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestRegion_GoodFirstRead(t *testing.T) {
	engine := ocrtest.New().On(layout.LicenseNumber, ocrtest.Text("7712345678", 0.9))

	got := newExtractor(engine).Region(context.Background(), testVariants(6), region(layout.LicenseNumber))

	if got.Text != "7712345678" || got.Confidence != 0.9 {
		t.Errorf("got %+v", got)
	}
	if n := engine.Calls(layout.LicenseNumber); n != 1 {
		t.Errorf("engine called %d times, want 1", n)
	}
	req := engine.Requests()[0]
	if req.Mode != ocr.ModeLine || req.Charset != DigitCharset {
		t.Errorf("request: got mode %v charset %q", req.Mode, req.Charset)
	}
}

func TestRegion_RetriesVariants(t *testing.T) {
	engine := ocrtest.New().On(layout.BirthDate,
		ocrtest.Text("1985", 0.7),       // not a date: retry
		ocrtest.Text("12.03.1985", 0.6), // better
	)

	got := newExtractor(engine).Region(context.Background(), testVariants(2), region(layout.BirthDate))

	if got.Text != "12.03.1985" || got.Confidence != 0.6 {
		t.Errorf("got %+v", got)
	}
	// Five region variants on two images, minus the first read reused.
	if n := engine.Calls(layout.BirthDate); n != 10 {
		t.Errorf("engine called %d times, want 10", n)
	}
}

func TestRegion_StrictlyBetterWins(t *testing.T) {
	engine := ocrtest.New().On(layout.BirthDate,
		ocrtest.Text("1985", 0.7),
		ocrtest.Text("01.01.2000", 0.5),
		ocrtest.Text("02.02.2002", 0.5), // same score, later
	)

	got := newExtractor(engine).Region(context.Background(), testVariants(2), region(layout.BirthDate))

	if got.Text != "01.01.2000" {
		t.Errorf("got %q, want the first of equally scored reads", got.Text)
	}
}

func TestRegion_KeepsFirstReadWhenNothingBetter(t *testing.T) {
	engine := ocrtest.New().On(layout.Surname,
		ocrtest.Text("ИВАНОВ", 0.5),
		ocrtest.Reply{},
		ocrtest.Text("IVANOV", 0.6),
	)

	got := newExtractor(engine).Region(context.Background(), testVariants(2), region(layout.Surname))

	if got.Text != "ИВАНОВ" || got.Confidence != 0.5 {
		t.Errorf("got %+v", got)
	}
}

func TestRegion_Errors(t *testing.T) {
	t.Run("first read fails", func(t *testing.T) {
		engine := ocrtest.New().On(layout.Surname, ocrtest.Reply{Err: errors.New("engine crashed")})

		got := newExtractor(engine).Region(context.Background(), testVariants(3), region(layout.Surname))

		if got.Text != "" || got.Confidence != 0 {
			t.Errorf("got %+v, want empty", got)
		}
		if n := engine.Calls(layout.Surname); n != 1 {
			t.Errorf("engine called %d times, want 1", n)
		}
	})

	t.Run("variant read fails", func(t *testing.T) {
		engine := ocrtest.New().On(layout.Surname,
			ocrtest.Text("ИВАНОВ", 0.5),
			ocrtest.Reply{Err: errors.New("timeout")},
			ocrtest.Text("ПЕТРОВ", 0.9),
		)

		got := newExtractor(engine).Region(context.Background(), testVariants(2), region(layout.Surname))

		if got.Text != "ПЕТРОВ" {
			t.Errorf("got %q, want ПЕТРОВ", got.Text)
		}
	})

	t.Run("region off canvas", func(t *testing.T) {
		engine := ocrtest.New()
		r := layout.Region{Name: layout.Surname, X: 900, Y: 900, Width: 50, Height: 20}

		got := newExtractor(engine).Region(context.Background(), testVariants(2), r)

		if got.Text != "" || engine.Calls(layout.Surname) != 0 {
			t.Errorf("got %+v after %d calls", got, engine.Calls(layout.Surname))
		}
	})

	t.Run("no variants", func(t *testing.T) {
		got := newExtractor(ocrtest.New()).Region(context.Background(), nil, region(layout.Surname))
		if got.Text != "" {
			t.Errorf("got %+v", got)
		}
	})
}

func TestRegion_DetectMode(t *testing.T) {
	engine := ocrtest.New().On(layout.FullNameLine, ocrtest.Lines(0.9, "ИВАНОВ", "ИВАН", "ИВАНОВИЧ"))

	got := newExtractor(engine).Region(context.Background(), testVariants(1), region(layout.FullNameLine))

	if got.Text != "ИВАНОВ ИВАН ИВАНОВИЧ" {
		t.Errorf("got %q", got.Text)
	}
	if engine.Requests()[0].Mode != ocr.ModeDetect {
		t.Error("full name line should be read in detect mode")
	}
}

func TestRegions_Order(t *testing.T) {
	for _, workers := range []int{1, 4} {
		engine := ocrtest.New().
			On(layout.Surname, ocrtest.Text("ИВАНОВ", 0.9)).
			On(layout.Name, ocrtest.Text("ИВАН", 0.9)).
			On(layout.Patronymic, ocrtest.Text("ИВАНОВИЧ", 0.9))
		regions := []layout.Region{region(layout.Surname), region(layout.Name), region(layout.Patronymic)}

		got := newExtractor(engine, WithWorkers(workers)).Regions(context.Background(), testVariants(2), regions)

		want := []string{"ИВАНОВ", "ИВАН", "ИВАНОВИЧ"}
		if len(got) != len(want) {
			t.Fatalf("workers=%d: got %d readings", workers, len(got))
		}
		for i, r := range got {
			if r.Region != regions[i].Name || r.Text != want[i] {
				t.Errorf("workers=%d reading %d: got %s=%q", workers, i, r.Region, r.Text)
			}
		}
		if text := got.Text(); text != "ИВАНОВ\nИВАН\nИВАНОВИЧ" {
			t.Errorf("workers=%d Text: got %q", workers, text)
		}
		if m := got.Map(); m[layout.Name].Text != "ИВАН" {
			t.Errorf("workers=%d Map: got %+v", workers, m)
		}
	}
}

func TestFullText(t *testing.T) {
	engine := ocrtest.New().On(FullTextField,
		ocrtest.Lines(0.5, "A", "B"),
		ocrtest.Reply{Err: errors.New("boom")},
		ocrtest.Lines(0.9, "ИВАНОВ ИВАН", " "),
		ocrtest.Reply{},
	)

	text, conf := newExtractor(engine).FullText(context.Background(), testVariants(4))

	if text != "ИВАНОВ ИВАН" {
		t.Errorf("text: got %q", text)
	}
	if conf != 0.9 {
		t.Errorf("confidence: got %v, want 0.9", conf)
	}
	if n := engine.Calls(FullTextField); n != 4 {
		t.Errorf("engine called %d times, want 4", n)
	}
}

func TestFullText_LengthBonus(t *testing.T) {
	long := "ВОДИТЕЛЬСКОЕ УДОСТОВЕРЕНИЕ ИВАНОВ ИВАН ИВАНОВИЧ 12.03.1985 МОСКВА ГИБДД 7701"
	engine := ocrtest.New().On(FullTextField,
		ocrtest.Lines(0.6, "ИВАН"),
		ocrtest.Lines(0.58, long),
	)

	text, _ := newExtractor(engine).FullText(context.Background(), testVariants(2))

	if text != long {
		t.Errorf("the longer read should win on the length bonus, got %q", text)
	}
}

func TestTemplateScorer(t *testing.T) {
	engine := ocrtest.New().
		On(layout.FullNameLine, ocrtest.Lines(0.8, "ИВАНОВ")).
		On(layout.BirthDate, ocrtest.Text("12.03.1985", 0.8)).
		On(layout.LicenseNumber, ocrtest.Text("7712345678", 0.8))
	tmpl := layout.Template{Name: "t", Regions: []layout.Region{
		region(layout.FullNameLine), region(layout.BirthDate), region(layout.LicenseNumber), region(layout.Surname),
	}}

	score, ok := newExtractor(engine).TemplateScorer(testVariants(3))(context.Background(), tmpl)

	if !ok {
		t.Fatal("expected a score")
	}
	if want := (1.05 + 1.05 + 1.1) / 3; math.Abs(score-want) > 1e-9 {
		t.Errorf("score: got %v, want %v", score, want)
	}
	if engine.Calls(layout.Surname) != 0 {
		t.Error("only sample regions should be read")
	}
}

func TestTemplateScorer_NothingRead(t *testing.T) {
	tmpl := layout.Template{Name: "t", Regions: []layout.Region{region(layout.BirthDate)}}

	if _, ok := newExtractor(ocrtest.New()).TemplateScorer(testVariants(1))(context.Background(), tmpl); ok {
		t.Error("no candidates should yield no score")
	}
	if _, ok := newExtractor(ocrtest.New()).TemplateScorer(nil)(context.Background(), tmpl); ok {
		t.Error("no variants should yield no score")
	}
}

func TestAnchors(t *testing.T) {
	engine := ocrtest.New()
	engine.TokenList = []ocr.Token{
		{Text: "4a)", Confidence: 0.8, Box: image.Rect(100, 100, 120, 120)},
		{Text: "ИВАНОВ", Confidence: 0.9, Box: image.Rect(200, 100, 300, 120)},
	}

	anchors := newExtractor(engine).Anchors(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))

	if len(anchors) != 1 {
		t.Fatalf("got %d anchors, want 1", len(anchors))
	}
	if a := anchors[layout.AnchorIssued]; a.X != 110 || a.Y != 110 {
		t.Errorf("4A anchor: got %+v", a)
	}

	engine.TokensErr = errors.New("no tessdata")
	if anchors := newExtractor(engine).Anchors(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10))); len(anchors) != 0 {
		t.Errorf("token error should yield no anchors, got %v", anchors)
	}
}
