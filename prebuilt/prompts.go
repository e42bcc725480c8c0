package prebuilt

// Prompts are Go templates. {{.time}} is always available.
const (
	DefaultGenerationPrompt = `You are a content creation assistant tasked with writing excellent posts.
Generate the best post possible for the user's request.
If the user provides critique, respond with a revised version of your previous attempts.`

	DefaultReflectionPrompt = `You are a demanding editor grading a post.
Generate critique and recommendations for the user's post.
Always provide detailed recommendations, including requests for length, clarity, style and structure.`

	// ResearcherPrompt is shared by the responder and the revisor. It
	// expects the variable first_instruction.
	ResearcherPrompt = `You are expert AI researcher.
Current time: {{.time}}

1. {{.first_instruction}}
2. Reflect and critique your answer. Be severe to maximize improvement.
3. After the reflection, **list 1-3 search queries separately** for researching improvements. Do not include them inside the reflection.
`

	// ResearcherTrailingPrompt follows the conversation in every research
	// request.
	ResearcherTrailingPrompt = "Answer the user's question above using the required format."

	FirstResponderInstruction = "Provide a detailed ~250 word answer."

	RevisorInstruction = `Revise your previous answer using the new information.
- You should use the previous critique to add important information to your answer.
- You MUST include numerical citations in your revised answer to ensure it can be verified.
- Add a "References" section to the bottom of your answer (which does not count towards the word limit). In form of:
    - [1] https://example.com
    - [2] https://example.com
- You should use the previous critique to remove superfluous information from your answer and make SURE it is not more than 250 words.`

	// DefaultChatPrompt seeds a new chat session. It is stored verbatim.
	DefaultChatPrompt = "You are a helpful AI assistant."

	FactsSystemPrompt = "Du bist ein KI Experte für {{.topic}}."
	FactsPrompt       = "Gib mir die {{.number}} wichtigsten Informationen über {{.topic}}."

	MovieCriticPrompt  = "You are a movie critic."
	MovieSummaryPrompt = "Gib mir die wichtigsten Informationen über den Film {{.movie_name}}."
	// The analysis prompts both read the summary of the movie.
	PlotAnalysisPrompt      = "Analyze the plot: {{.summary}}. What are its strengths and weaknesses?"
	CharacterAnalysisPrompt = "Analyze the characters: {{.summary}}. What are its strengths and weaknesses?"
)
