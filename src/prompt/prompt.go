// Package prompt builds the vision-model prompts for problem extraction.
// Two variants exist: a cold-start prompt for the first screenshot of a
// session and an incremental-merge prompt that carries the previous
// extraction forward so follow-up screenshots refine one JSON object.
package prompt

// ProblemSchema is the JSON shape the model is asked to fill in.
const ProblemSchema = `{
  "title": "Problem title or name",
  "description": "A clear, concise summary of the problem statement.",
  "constraints": [
    "List of constraints, e.g., '1 <= nums.length <= 1000'"
  ],
  "functionSignature": "The code boilerplate or function signature to be completed.",
  "examples": [
    {
      "input": "Input for example 1",
      "output": "Output for example 1",
      "explanation": "Optional explanation for example 1"
    }
  ]
}`

// ColdStart returns the first-capture prompt. It carries no prior context.
func ColdStart() string {
	return "You are an expert assistant for extracting programming problems from images. " +
		"Analyze the following image and extract the key information. " +
		"Respond ONLY with a single JSON object that follows this exact schema: " + ProblemSchema + ". " +
		"Fill in all fields based on the content of the image. " +
		"If some information is missing, use null for its value."
}

// Incremental returns the follow-up prompt embedding the previous extraction
// verbatim. The model is asked to return one complete, updated JSON object.
func Incremental(prior string) string {
	return "You are an expert assistant for extracting programming problems from images. " +
		"You have already processed a previous image and extracted the following JSON data: " +
		"```json\n" + prior + "\n```. " +
		"Now, analyze this new image. Update and complete the previous JSON data with any new or " +
		"missing information from this new screenshot. If the new image contains a correction or " +
		"refinement of existing data, update the corresponding fields. " +
		"Respond ONLY with the single, complete, and updated JSON object."
}

// ForCapture selects the prompt variant for a capture. capturedCount is the
// number of screenshots already sent this session, before this capture.
func ForCapture(capturedCount int, prior string) string {
	if capturedCount == 0 {
		return ColdStart()
	}
	return Incremental(prior)
}
