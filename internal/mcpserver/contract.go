package mcpserver

// VocabularyContract describes the fact types and stage names the update
// pipeline recognizes, for LLM consumers posting updates through MCP.
const VocabularyContract = `# Dot Update Vocabulary Contract

Every update posted via the ` + "`" + `post_update` + "`" + ` tool is classified into
typed facts drawn from a fixed vocabulary. Phrasing the message around these
facts makes classification reliable.

## Fact types

| Type         | Meaning                                       | Example phrasing            |
|--------------|-----------------------------------------------|-----------------------------|
| stage        | The project moves to a pipeline stage         | "moving to Craft"           |
| status       | Free-text progress note (logged, not patched) | "on track for the deadline" |
| due_date     | When the next deliverable is due              | "due Friday", "due 20 Jan"  |
| live_date    | When the work goes live                       | "live 20 Jan"               |
| with_client  | Work handed to or returned from the client    | "with client for review"    |

## Stages

- Brief
- Concept
- Craft
- Review
- With Client
- Delivery
- Live

Stage names tolerate minor misspellings ("Craftt", "delivry") and extra
surrounding words ("moving to the review stage"). Anything further from the
list is kept in the log verbatim but never written to the project record.

## Dates

Accepted forms: ISO (2025-01-20), day-month ("20 Jan", "January 20"),
relative ("today", "tomorrow", "Friday", "next Friday"). Bare weekday names
mean the next occurrence; "next <weekday>" means the occurrence after that.

## Rules

1. One fact per type per update. If a message states two stages, only the
   first is kept.
2. ` + "`" + `status` + "`" + ` text is truncated at 280 characters.
3. Dates that cannot be parsed stay in the update log as written but are
   not pushed to project fields.
`
