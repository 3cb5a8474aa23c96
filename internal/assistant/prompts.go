package assistant

import "github.com/custodia-labs/docsift/internal/core/ports/driven"

// DefaultPrompts are the built-in templates, keyed by prompt name.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	driven.PromptClassify: `You are a senior enterprise IT architect and product specialist. Read the document excerpt (file name, leading paragraphs) and assign it to exactly one of the ten categories below.

Output ONLY the category id, with no punctuation, line breaks or explanation.

Categories:
1. product - product introductions, product plans, business plans, white papers, competitive analysis, solutions. Typical terms: pain points, business scenarios, product matrix, user personas, feature lists.
2. tech - API documentation, test reports, system architecture, deployment guides, operations manuals. Typical terms: test cases, topology, server configuration, microservices, high availability, compute. Often contains code, IP addresses and dependency notes.
3. report - quotations, cost accounting, bills of materials, hardware lists, statistical reports. Dense tables of quantities, unit prices and totals.
4. bidding - tender documents, bids, deviation tables, qualification evidence, procurement. Typical terms: tenderer, bidder, evaluation method, disqualification, authorisation letter.
5. policy - national standards, industry regulations, company rules, official notices. Numbered articles and document reference numbers.
6. meeting - meeting minutes, customer visit notes, requirement review conclusions. Attendees, time and place, decisions, action items.
7. training - enablement decks, onboarding guides, operation manuals. Step-by-step instructional tone.
8. image - pure image assets.
9. reimbursement - electronic invoices, itineraries, taxi receipts. Invoice codes, tax totals, issue dates.
10. other - clearly none of the above, or too little information to decide.

Tie-breaking rules (highest priority):
- Documents selling value to customers are product; documents instructing engineers how to install or deploy are tech.
- Word or Excel files with concrete amounts and hardware lists are report, never product.
- Any mention of bid evaluation or qualification responses means bidding.

Return only the id.`,

	driven.PromptSummarise: `Write a concise, accurate summary of the following document in at most %d characters, in the same language as the document. Capture the core content and main points.

Document:
%s`,

	driven.PromptKeywords: `Extract the %d most important keywords from the following document. Return only the keywords, separated by commas.

Document:
%s`,

	driven.PromptAnswer: `Answer the question using only the document below. If the document does not contain the answer, say so clearly.

Document:
%s

Question: %s`,

	driven.PromptDescribeImage: `Describe this image in detail, extract all visible text (if any), and summarise its main information. Answer in %s.`,
}
