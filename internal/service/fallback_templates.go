package service

import (
	"quiz_agent_backend/internal/model"
	"strings"
)

type questionTemplate struct {
	Text        string
	Options     [4]string
	Answer      string
	Explanation string
}

type templateTable map[string]map[model.Difficulty][]questionTemplate

const generalSubject = "general"

// subjectKeywords 按顺序匹配，先命中先用
var subjectKeywords = []struct {
	subject  string
	keywords []string
}{
	{"python", []string{"python", "programming", "coding"}},
	{"javascript", []string{"javascript", "js", "typescript", "web"}},
	{"mathematics", []string{"math", "mathematics", "calculus", "algebra", "geometry"}},
	{"science", []string{"science", "physics", "chemistry", "biology"}},
	{"history", []string{"history"}},
}

// TemplateFallback 本地模板出题，不依赖外部服务
type TemplateFallback struct {
	templates templateTable
}

func NewTemplateFallback() *TemplateFallback {
	return &TemplateFallback{templates: defaultTemplates}
}

// Questions 按位置循环取模板，数量总是等于 NumQuestions（模板表为空时返回 nil）
func (f *TemplateFallback) Questions(req GenerationRequest) []model.Question {
	pool := f.pool(req.Subject, req.Difficulty)
	if len(pool) == 0 || req.NumQuestions <= 0 {
		return nil
	}

	difficulty := req.Difficulty
	if !difficulty.Valid() {
		difficulty = model.Easy
	}

	questions := make([]model.Question, req.NumQuestions)
	for i := range questions {
		t := pool[i%len(pool)]
		questions[i] = model.Question{
			ID:            model.QuestionID(i),
			Position:      i,
			Text:          t.Text,
			Type:          model.MultipleChoice,
			Options:       append([]string(nil), t.Options[:]...),
			CorrectAnswer: t.Answer,
			Explanation:   t.Explanation,
			Difficulty:    difficulty,
			Points:        difficulty.DefaultPoints(),
		}
	}
	return questions
}

func (f *TemplateFallback) pool(subject string, difficulty model.Difficulty) []questionTemplate {
	bySubject, ok := f.templates[matchSubject(subject)]
	if !ok {
		bySubject = f.templates[generalSubject]
	}
	if pool := bySubject[difficulty]; len(pool) > 0 {
		return pool
	}
	if pool := bySubject[model.Easy]; len(pool) > 0 {
		return pool
	}
	return f.templates[generalSubject][model.Easy]
}

func matchSubject(subject string) string {
	words := strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, entry := range subjectKeywords {
		for _, kw := range entry.keywords {
			for _, w := range words {
				if w == kw {
					return entry.subject
				}
			}
		}
	}
	return generalSubject
}

var defaultTemplates = templateTable{
	"python": {
		model.Easy: {
			{
				Text:        "Which keyword is used to define a function in Python?",
				Options:     [4]string{"def", "func", "function", "lambda"},
				Answer:      "def",
				Explanation: "Functions are declared with the def keyword followed by the name and parameters.",
			},
			{
				Text:        "What is the output of print(type([]))?",
				Options:     [4]string{"<class 'list'>", "<class 'tuple'>", "<class 'dict'>", "<class 'set'>"},
				Answer:      "<class 'list'>",
				Explanation: "Square brackets create a list, so type([]) is the list class.",
			},
			{
				Text:        "Which of these data types is immutable in Python?",
				Options:     [4]string{"tuple", "list", "dict", "set"},
				Answer:      "tuple",
				Explanation: "Tuples cannot be changed after creation; lists, dicts and sets can.",
			},
		},
		model.Medium: {
			{
				Text:        "What does a list comprehension like [x * 2 for x in range(3)] produce?",
				Options:     [4]string{"[0, 2, 4]", "[2, 4, 6]", "[0, 1, 2]", "[1, 2, 3]"},
				Answer:      "[0, 2, 4]",
				Explanation: "range(3) yields 0, 1 and 2, and each value is doubled.",
			},
			{
				Text:        "Which statement about Python decorators is true?",
				Options:     [4]string{"They wrap a function and return a new callable", "They can only be applied to classes", "They change the function's bytecode in place", "They are evaluated on every call"},
				Answer:      "They wrap a function and return a new callable",
				Explanation: "A decorator receives a function and returns a replacement callable, applied once at definition time.",
			},
		},
		model.Hard: {
			{
				Text:        "What problem does the Global Interpreter Lock (GIL) cause in CPython?",
				Options:     [4]string{"CPU-bound threads cannot run Python bytecode in parallel", "Processes cannot share memory", "Async code cannot await I/O", "Imports are not thread-safe"},
				Answer:      "CPU-bound threads cannot run Python bytecode in parallel",
				Explanation: "Only one thread executes Python bytecode at a time, which limits CPU-bound multithreading.",
			},
			{
				Text:        "What is returned by a generator function when it is called?",
				Options:     [4]string{"A generator object", "The first yielded value", "A list of all yielded values", "None"},
				Answer:      "A generator object",
				Explanation: "Calling a generator function does not run its body; it returns an iterator that runs lazily.",
			},
		},
	},
	"javascript": {
		model.Easy: {
			{
				Text:        "Which keyword declares a block-scoped variable that cannot be reassigned?",
				Options:     [4]string{"const", "var", "let", "static"},
				Answer:      "const",
				Explanation: "const creates a block-scoped binding that cannot be reassigned.",
			},
			{
				Text:        "What does the === operator check?",
				Options:     [4]string{"Strict equality check", "Assignment", "Loose equality check", "Comparison of object shapes"},
				Answer:      "Strict equality check",
				Explanation: "=== compares value and type without coercion.",
			},
		},
		model.Medium: {
			{
				Text:        "What does Array.prototype.map return?",
				Options:     [4]string{"A new array with transformed elements", "The original array mutated", "A single accumulated value", "undefined"},
				Answer:      "A new array with transformed elements",
				Explanation: "map calls the callback for each element and collects the results into a new array.",
			},
			{
				Text:        "What is a closure in JavaScript?",
				Options:     [4]string{"A function bundled with its lexical scope", "A way to end a loop early", "A sealed object", "A finished Promise"},
				Answer:      "A function bundled with its lexical scope",
				Explanation: "Closures keep access to variables of the scope where the function was defined.",
			},
		},
		model.Hard: {
			{
				Text:        "In which order do microtasks and macrotasks run after the current script finishes?",
				Options:     [4]string{"All queued microtasks, then the next macrotask", "The next macrotask, then microtasks", "They interleave randomly", "Microtasks only run when the stack is idle for 4ms"},
				Answer:      "All queued microtasks, then the next macrotask",
				Explanation: "The event loop drains the microtask queue before taking the next macrotask.",
			},
		},
	},
	"mathematics": {
		model.Easy: {
			{
				Text:        "What is 7 x 8?",
				Options:     [4]string{"56", "54", "64", "48"},
				Answer:      "56",
				Explanation: "7 multiplied by 8 equals 56.",
			},
			{
				Text:        "What is the value of 2 to the power of 5?",
				Options:     [4]string{"32", "16", "25", "10"},
				Answer:      "32",
				Explanation: "2 x 2 x 2 x 2 x 2 = 32.",
			},
			{
				Text:        "What is the perimeter of a square with side length 4?",
				Options:     [4]string{"16", "8", "12", "20"},
				Answer:      "16",
				Explanation: "A square has four equal sides, so 4 x 4 = 16.",
			},
		},
		model.Medium: {
			{
				Text:        "Solve for x: 3x + 5 = 20",
				Options:     [4]string{"5", "15", "3", "25/3"},
				Answer:      "5",
				Explanation: "Subtract 5 to get 3x = 15, then divide by 3.",
			},
			{
				Text:        "What is the derivative of x^2?",
				Options:     [4]string{"2x", "x", "x^3/3", "2"},
				Answer:      "2x",
				Explanation: "By the power rule, d/dx x^n = n x^(n-1).",
			},
		},
		model.Hard: {
			{
				Text:        "What is the integral of 1/x dx?",
				Options:     [4]string{"ln|x| + C", "x^2/2 + C", "-1/x^2 + C", "e^x + C"},
				Answer:      "ln|x| + C",
				Explanation: "The antiderivative of 1/x is the natural logarithm of |x|.",
			},
			{
				Text:        "What is the limit of sin(x)/x as x approaches 0?",
				Options:     [4]string{"1", "0", "Infinity", "It does not exist"},
				Answer:      "1",
				Explanation: "This is a standard limit, provable with the squeeze theorem.",
			},
		},
	},
	"science": {
		model.Easy: {
			{
				Text:        "What is the chemical symbol for water?",
				Options:     [4]string{"H2O", "O2", "CO2", "NaCl"},
				Answer:      "H2O",
				Explanation: "Water is two hydrogen atoms bonded to one oxygen atom.",
			},
			{
				Text:        "Which planet is closest to the Sun?",
				Options:     [4]string{"Mercury", "Venus", "Earth", "Mars"},
				Answer:      "Mercury",
				Explanation: "Mercury has the smallest orbit of the planets in our solar system.",
			},
		},
		model.Medium: {
			{
				Text:        "What is the SI unit of force?",
				Options:     [4]string{"Newton", "Joule", "Watt", "Pascal"},
				Answer:      "Newton",
				Explanation: "One newton accelerates one kilogram at one metre per second squared.",
			},
			{
				Text:        "Which organelle produces most of a cell's ATP?",
				Options:     [4]string{"Mitochondrion", "Nucleus", "Ribosome", "Golgi apparatus"},
				Answer:      "Mitochondrion",
				Explanation: "Cellular respiration in the mitochondria generates most ATP.",
			},
		},
	},
	"history": {
		model.Easy: {
			{
				Text:        "In which year did World War II end?",
				Options:     [4]string{"1945", "1939", "1918", "1950"},
				Answer:      "1945",
				Explanation: "The war ended in 1945 with the surrender of Germany and then Japan.",
			},
			{
				Text:        "Which ancient civilization built the pyramids of Giza?",
				Options:     [4]string{"Egyptians", "Romans", "Greeks", "Persians"},
				Answer:      "Egyptians",
				Explanation: "The pyramids were built by Old Kingdom Egyptians as royal tombs.",
			},
		},
	},
	generalSubject: {
		model.Easy: {
			{
				Text:        "How many continents are there on Earth?",
				Options:     [4]string{"7", "5", "6", "8"},
				Answer:      "7",
				Explanation: "The common convention counts seven continents.",
			},
			{
				Text:        "Which is the largest ocean on Earth?",
				Options:     [4]string{"Pacific Ocean", "Atlantic Ocean", "Indian Ocean", "Arctic Ocean"},
				Answer:      "Pacific Ocean",
				Explanation: "The Pacific covers roughly a third of the Earth's surface.",
			},
		},
		model.Medium: {
			{
				Text:        "What is the binary representation of the decimal number 10?",
				Options:     [4]string{"1010", "1100", "1001", "0110"},
				Answer:      "1010",
				Explanation: "10 = 8 + 2, which is 1010 in base 2.",
			},
		},
		model.Hard: {
			{
				Text:        "Which sorting algorithm has the best worst-case time complexity?",
				Options:     [4]string{"Merge sort", "Quick sort", "Bubble sort", "Insertion sort"},
				Answer:      "Merge sort",
				Explanation: "Merge sort is O(n log n) in the worst case; quick sort degrades to O(n^2).",
			},
		},
	},
}
