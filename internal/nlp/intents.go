package nlp

// Intent is a named classification label with the phrases that signal it and
// the canned replies for it. Responses may contain {time}, {date} and {today}
// placeholders which are filled when a reply is generated.
type Intent struct {
	Name      string
	Patterns  []string
	Responses []string
}

const IntentUnknown = "unknown"

// DefaultIntents is the productivity assistant catalog. Order matters: on a
// confidence tie the earlier intent wins.
func DefaultIntents() []Intent {
	return []Intent{
		{
			Name: "greeting",
			Patterns: []string{
				"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
				"greetings", "what's up", "howdy", "hola",
			},
			Responses: []string{
				"Hello! I'm your personal productivity assistant. How can I help you today?",
				"Hi there! I'm here to help you stay productive. What would you like to do?",
				"Greetings! I'm ready to assist you with your tasks and productivity needs.",
				"Hello! Welcome to your personal productivity chatbot. How may I assist you?",
			},
		},
		{
			Name: "task_creation",
			Patterns: []string{
				"create task", "add task", "new task", "make task", "task for",
				"remind me to", "i need to", "todo", "to do", "schedule task",
			},
			Responses: []string{
				"I'd be happy to help you create a new task! What would you like to be reminded about?",
				"Great! Let's add a new task to your list. Please tell me what you need to do.",
				"Perfect! I'll help you create a task. What's the task description?",
				"Sure thing! What task would you like me to add to your productivity list?",
			},
		},
		{
			Name: "schedule_meeting",
			Patterns: []string{
				"schedule meeting", "book meeting", "arrange meeting", "set up meeting",
				"meeting with", "calendar appointment", "schedule call", "book appointment",
			},
			Responses: []string{
				"I can help you schedule a meeting! When would you like to meet and with whom?",
				"Let's get that meeting scheduled. Please provide the date, time, and participants.",
				"I'll help you arrange the meeting. What are the meeting details?",
				"Perfect! I can assist with scheduling. What are the meeting requirements?",
			},
		},
		{
			Name: "time_management",
			Patterns: []string{
				"what time", "current time", "what day", "today's date", "schedule today",
				"my calendar", "free time", "available time", "busy schedule",
			},
			Responses: []string{
				"The current time is {time} on {date}.",
				"Today is {today} and it's currently {time}.",
				"Let me help you with time management. What specific information do you need?",
				"I can assist with your schedule and time management needs. What would you like to know?",
			},
		},
		{
			Name: "productivity_tips",
			Patterns: []string{
				"productivity tips", "be more productive", "improve productivity",
				"work better", "efficiency tips", "time management tips", "focus better",
			},
			Responses: []string{
				"Here are some productivity tips: 1) Use the Pomodoro Technique (25min work, 5min break), 2) Prioritize tasks using the Eisenhower Matrix, 3) Eliminate distractions during focused work time.",
				"To boost productivity: Break large tasks into smaller ones, set specific deadlines, use time-blocking for your calendar, and take regular breaks to maintain focus.",
				"Great productivity strategies include: batching similar tasks together, using the 2-minute rule (do it now if it takes less than 2 minutes), and reviewing your goals weekly.",
				"For better productivity: Start with your most important task, minimize multitasking, use productivity apps for tracking, and maintain a consistent daily routine.",
			},
		},
		{
			Name: "reminder",
			Patterns: []string{
				"remind me", "set reminder", "don't forget", "remember to",
				"notification for", "alert me", "ping me about",
			},
			Responses: []string{
				"I'll set up a reminder for you! What should I remind you about and when?",
				"Perfect! I can create a reminder. Please specify what and when you'd like to be reminded.",
				"I'd be happy to set a reminder. What's the reminder details and timing?",
				"Sure! Let me set that reminder. What should I remind you about?",
			},
		},
		{
			Name: "status_check",
			Patterns: []string{
				"how are you", "how's it going", "status", "are you working",
				"system status", "how do you feel", "what's your status",
			},
			Responses: []string{
				"I'm functioning perfectly and ready to help you be more productive!",
				"All systems are running smoothly! I'm here and ready to assist with your tasks.",
				"I'm doing great and excited to help you achieve your productivity goals!",
				"Everything's working well on my end. How can I help you stay productive today?",
			},
		},
		{
			Name: "help",
			Patterns: []string{
				"help", "what can you do", "commands", "features", "capabilities",
				"how to use", "instructions", "guide", "what are your functions",
			},
			Responses: []string{
				"I can help you with: creating and managing tasks, scheduling meetings, setting reminders, providing productivity tips, time management and general productivity assistance. Just ask me naturally!",
				"Here's what I can do for you: Create tasks, schedule meetings, set reminders, provide productivity advice, help with time management, and answer questions about your schedule.",
				"My capabilities include: Task management, meeting scheduling, reminder setting, productivity coaching, time tracking assistance, and general productivity support. How can I help?",
				"I'm your productivity assistant! I can create tasks, schedule meetings, set reminders, give productivity tips, help with time management, and much more. What would you like to do?",
			},
		},
		{
			Name: "goodbye",
			Patterns: []string{
				"bye", "goodbye", "see you later", "farewell", "talk to you later",
				"exit", "quit", "end chat", "that's all", "thanks bye",
			},
			Responses: []string{
				"Goodbye! Stay productive and have a great day!",
				"See you later! Remember to stay focused on your goals.",
				"Farewell! I'm here whenever you need productivity assistance.",
				"Bye! Keep up the great work on your productivity journey!",
			},
		},
		{
			Name: IntentUnknown,
			Responses: []string{
				"I'm not sure I understand that. Could you please rephrase or ask me about tasks, meetings, reminders, or productivity tips?",
				"I didn't quite catch that. I can help with task management, scheduling, reminders, and productivity advice. What would you like to do?",
				"I'm still learning! Could you try asking about creating tasks, scheduling meetings, setting reminders, or getting productivity tips?",
				"I'm not sure how to help with that. I specialize in productivity assistance - tasks, meetings, reminders, and time management. What can I help you with?",
			},
		},
	}
}
