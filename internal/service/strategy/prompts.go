package strategy

const targetingSystemPrompt = `You are a B2B sales targeting expert. Your job is to convert natural language descriptions into specific job titles and search parameters.

ALWAYS return ONLY valid JSON. No other text.`

const targetingUserPrompt = `
Convert this targeting request into specific search parameters.

USER REQUEST: %q
COMPANY INDUSTRY: %s

Generate:
1. 10-15 specific job titles that match this request
2. Appropriate seniority levels
3. Location requirements (if mentioned)
4. Brief explanation

Return ONLY valid JSON in this EXACT format:
{
  "titles": ["exact", "job", "titles"],
  "seniorities": ["c_suite", "vp", "director"],
  "locations": ["City/State"] or null,
  "explanation": "Brief explanation"
}

SENIORITY OPTIONS (use only these):
- "c_suite" (CEO, CTO, CFO, CMO, etc.)
- "vp" (Vice Presidents, SVP)
- "director" (Directors)
- "manager" (Managers)
- "senior" (Senior ICs)

EXAMPLES:

Input: "c-suite executives"
Output:
{
  "titles": ["CEO", "Chief Executive Officer", "COO", "Chief Operating Officer", "CFO", "Chief Financial Officer", "CTO", "Chief Technology Officer", "CMO", "Chief Marketing Officer", "President"],
  "seniorities": ["c_suite"],
  "locations": null,
  "explanation": "Targeting top-level C-suite executives across all functions"
}

Input: "sales leaders in New York"
Output:
{
  "titles": ["VP Sales", "Vice President of Sales", "SVP Sales", "Director of Sales", "Head of Sales", "Chief Revenue Officer"],
  "seniorities": ["c_suite", "vp", "director"],
  "locations": ["New York"],
  "explanation": "Targeting senior sales leadership in New York"
}

Input: "people who make software purchasing decisions"
Output:
{
  "titles": ["CTO", "Chief Technology Officer", "VP Technology", "VP IT", "CIO", "Chief Information Officer", "VP Engineering", "Director IT"],
  "seniorities": ["c_suite", "vp", "director"],
  "locations": null,
  "explanation": "Targeting technology decision-makers who control IT/software budgets"
}

Now convert this request:
`

const outreachNotePrompt = `Write a brief, actionable note for a sales/outreach team about why they should connect with this person.

**Contact**: %s
**Title**: %s
**Company**: %s
**Industry**: %s
**Company Size**: %s employees
**Outreach Goal**: %s

Write 2-3 sentences explaining:
1. Why this person is relevant for the outreach goal
2. What value proposition to lead with
3. One specific talking point or hook

Keep it professional, concise, and actionable. No fluff.`
