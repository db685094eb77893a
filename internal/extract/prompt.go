package extract

import (
	"encoding/json"
	"fmt"

	"github.com/lexatlas/regscan/internal/model"
)

// buildStatePrompt asks the model for a full DocumentState-shaped JSON
// object reflecting the prior state plus whatever this chunk supports.
// The date rules keep the model from regressing the resolved date.
func buildStatePrompt(docID string, state model.DocumentState, info model.DateInfo, chunk string) string {
	prior := state
	prior.Date = info.Date
	priorJSON, err := json.Marshal(prior)
	if err != nil {
		priorJSON = []byte("{}")
	}
	return fmt.Sprintf(`Return ONLY a JSON object with keys: "date","jurisdiction_country","sector","activity","regulatory_domain","impact_type","regulator_entity".
Rules:
- law_id is %s and must NOT appear in output.
- Do not change "date". If you include "date", it MUST equal CURRENT_DATE or be a strictly more specific ISO refinement of the SAME year and month.
- For list fields, add unique strings supported by this chunk; do not remove prior values.

LAW_HEADER:
%s

CURRENT_STATE:
%s

CURRENT_DATE_CONTEXT:
date: %s
evidence_chunk: %s

CHUNK:
%s`, docID, info.LawHeader, priorJSON, info.Date, info.EvidenceChunk, chunk)
}

// buildDateProbePrompt asks whether the chunk holds a date for this
// document specifically, with a same-law judgment and confidence score.
func buildDateProbePrompt(docID string, info model.DateInfo, chunk string) string {
	return fmt.Sprintf(`Return ONLY JSON: {"date":"","specificity":0,"is_stronger":false,"same_law":false,"confidence":0.0,"evidence":""}.
- Consider ONLY dates that refer to THIS law (not citations to other instruments).
- same_law: true only if the chunk clearly ties the date to THIS law identified by law_id and header.
- confidence: 0..1 for that judgment.
- specificity: 3=YYYY-MM-DD, 2=YYYY-MM, 1=YYYY, 0=unknown.
- is_stronger: true only if same_law is true AND the candidate is more specific than CURRENT_DATE and same year.

law_id: %s
law_header: %s

CURRENT_DATE: %s (specificity=%d)
CHUNK:
%s`, docID, info.LawHeader, info.Date, info.Specificity, chunk)
}
