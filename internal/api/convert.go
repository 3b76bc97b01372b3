package api

import "munajjam/align"

// SegmentSourceFromString maps the wire-level segment source string to its
// closed-enum value, shared by the HTTP/WebSocket API and cmd/alignsurah's
// fixture loader so the two don't drift.
func SegmentSourceFromString(s string) align.SegmentSource {
	switch s {
	case "ayah":
		return align.SegmentSourceAyah
	case "istiadha":
		return align.SegmentSourceIstiadha
	case "basmala":
		return align.SegmentSourceBasmala
	case "other":
		return align.SegmentSourceOther
	default:
		return align.SegmentSourceUnknown
	}
}

func toSegments(dtos []SegmentDTO) []align.Segment {
	out := make([]align.Segment, len(dtos))
	for i, d := range dtos {
		confidence := align.None[float32]()
		if d.Confidence != nil {
			confidence = align.Some(*d.Confidence)
		}
		out[i] = align.Segment{
			ID:         d.ID,
			SurahID:    d.SurahID,
			Start:      d.Start,
			End:        d.End,
			Text:       d.Text,
			Source:     SegmentSourceFromString(d.Source),
			Confidence: confidence,
		}
	}
	return out
}

func toAyahs(dtos []AyahDTO) []align.Ayah {
	out := make([]align.Ayah, len(dtos))
	for i, d := range dtos {
		out[i] = align.Ayah{Number: d.Number, SurahID: d.SurahID, Text: d.Text}
	}
	return out
}

func toSilences(dtos []SilenceDTO) []align.SilenceInterval {
	out := make([]align.SilenceInterval, len(dtos))
	for i, d := range dtos {
		out[i] = align.SilenceInterval{StartMS: d.StartMS, EndMS: d.EndMS}
	}
	return out
}

func toResultDTOs(results []align.AlignmentResult) []ResultDTO {
	out := make([]ResultDTO, len(results))
	for i, r := range results {
		out[i] = ResultDTO{
			AyahNumber: r.Ayah.Number,
			Start:      r.Start,
			End:        r.End,
			Text:       r.Text,
			Similarity: r.Similarity,
			Overlap:    r.Overlap,
			Source:     r.Source.String(),
		}
	}
	return out
}

func toReportDTO(report *align.RunReport) *ReportDTO {
	if report == nil {
		return nil
	}
	return &ReportDTO{
		RunID:             report.RunID,
		Strategy:          string(report.Strategy),
		MeanSimilarity:    report.MeanSimilarity,
		StdDevSimilarity:  report.StdDevSimilarity,
		CascadesRecovered: report.CascadesRecovered,
		ZonesRealigned:    report.ZonesRealigned,
		OverlapsFixed:     report.OverlapsFixed,
		Warnings:          report.Warnings,
	}
}
