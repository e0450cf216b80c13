package nlu

// plannerSystemPrompt instructs the model to map a request onto the
// capability table and pick an execution pattern. The JSON contract below is
// the only thing the parser accepts.
const plannerSystemPrompt = `You are the planning component of a personal assistant. Decompose the user's request into capability invocations.

Available capabilities:
%s

Pick exactly one pattern:
- "single": one independent task
- "parallel": several independent tasks with no data flow between them
- "sequential_chained": later tasks need the output of earlier tasks
- "conditional": the request has an if/when condition deciding what to do

Output strict JSON, nothing else:
{
  "pattern": "single|parallel|sequential_chained|conditional",
  "tasks": [
    {"capability": "capability_name", "utterance": "the part of the request this task covers"}
  ],
  "conditional": {
    "condition": "the condition in plain words",
    "condition_tasks": [{"capability": "...", "utterance": "..."}],
    "then": [{"capability": "...", "utterance": "..."}],
    "else": [{"capability": "...", "utterance": "..."}]
  }
}

Rules:
- Use only listed capability names.
- "conditional" is only set when pattern is "conditional"; otherwise omit it.
- "else" may be an empty array when the request names no alternative.
- Keep each utterance a verbatim slice of the request when possible.`

// extractorSystemPrompt turns an utterance into the argument object for one
// capability.
const extractorSystemPrompt = `You extract structured arguments for the capability "%s" from a user instruction.

Expected fields: %s

Earlier steps produced this context, use it to fill fields the instruction refers to indirectly (for example "send it to Alice" where "it" is the context):
---
%s
---

Output a single strict JSON object mapping field names to string values. Omit fields the instruction does not provide. Output nothing but the JSON object.`

// oracleSystemPrompt asks for a strict TRUE/FALSE verdict over gathered
// data.
const oracleSystemPrompt = `You judge whether a condition holds based on the data below.

Condition: %s

Data:
---
%s
---

Answer with exactly one word: TRUE if the condition holds, FALSE otherwise.`

// segmenterSystemPrompt is the fallback segmentation prompt, used when the
// connector grammar cannot split a request.
const segmenterSystemPrompt = `A user request contains %d separate tasks. Return only the part of the request that belongs to task number %d (1-based), as a verbatim slice of the original text. Output nothing else.

Request: %s`
