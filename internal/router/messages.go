package router

// Fixed user-visible responses. Every taxonomy error is converted to one of
// these at the router boundary; raw errors never reach the presentation
// layer.
const (
	msgEmptyInput = "Please enter a valid HR analytics question."

	msgGreeting = "Hello! Ask me about headcount, attrition, salary, engagement, or diversity."

	msgTranslationFailed = "Unable to process multilingual request."

	msgDataUnavailable = "Unable to load HR data."

	msgServiceUnavailable = "The assistant is temporarily unavailable. Please try again."

	msgOutOfDomain = "This assistant is limited to HR analytics.\n\n" +
		"Supported topics:\n" +
		"- Headcount\n" +
		"- Attrition\n" +
		"- Salary\n" +
		"- Engagement\n" +
		"- Workforce diversity"
)
