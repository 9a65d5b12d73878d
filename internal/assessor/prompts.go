package assessor

import (
	"fmt"
	"strings"
)

const questionsPromptTemplate = `You are an expert technical interviewer. Generate %d interview questions for the following position:

Role: %s
Experience Level: %s
Difficulty: %s%s

Requirements:
1. Questions should be appropriate for %s level candidates
2. Difficulty should be %s
3. Mix technical, behavioral, and situation-based questions
4. If resume is provided, include 2-3 questions specific to their experience
5. Include follow-up questions for deeper assessment

Format your response as a JSON array with this structure:
[
  {
    "id": 1,
    "question": "Main interview question",
    "type": "technical|behavioral|situational|resume-specific",
    "difficulty": "%s",
    "follow_ups": ["Follow-up question 1", "Follow-up question 2"],
    "evaluation_criteria": ["Criteria 1", "Criteria 2", "Criteria 3"],
    "expected_topics": ["Topic 1", "Topic 2"]
  }
]

Generate diverse, engaging questions that thoroughly assess the candidate's capabilities.`

func questionsPrompt(role, experience, difficulty, resumeText string, count int) string {
	resumeSection := ""
	if resumeText != "" {
		resumeSection = "\n\nCandidate's Resume:\n" + resumeText
	}
	return fmt.Sprintf(questionsPromptTemplate,
		count, role, experience, difficulty, resumeSection,
		experience, difficulty, difficulty)
}

const evaluationPromptTemplate = `You are an expert interviewer evaluating a candidate's response. Analyze this answer comprehensively:

Position: %s
Experience Level: %s
Question: %s
Candidate's Answer: %s
%s

Provide a detailed evaluation in JSON format:
{
  "overall_score": 85,
  "scores": {
    "technical_accuracy": 80,
    "communication_clarity": 90,
    "depth_of_knowledge": 75,
    "problem_solving": 85,
    "confidence": 88
  },
  "strengths": ["Strong communication", "Good technical understanding"],
  "weaknesses": ["Could elaborate more on implementation"],
  "detailed_feedback": "Comprehensive paragraph explaining the evaluation",
  "improvement_suggestions": ["Suggestion 1", "Suggestion 2"],
  "follow_up_questions": ["Follow-up question 1", "Follow-up question 2"],
  "red_flags": ["Any concerning responses"],
  "positive_indicators": ["Strong indicators of competence"]
}

Be thorough, constructive, and provide actionable feedback.`

func evaluationPrompt(question, answer, role, experience string, criteria []string) string {
	criteriaSection := ""
	if len(criteria) > 0 {
		criteriaSection = "Evaluation Criteria: " + strings.Join(criteria, ", ")
	}
	return fmt.Sprintf(evaluationPromptTemplate, role, experience, question, answer, criteriaSection)
}

const followUpPromptTemplate = `You are conducting an interview for a %s position. Based on the candidate's answer, generate a relevant follow-up question that:

1. Probes deeper into their response
2. Tests their knowledge further
3. Clarifies any unclear points
4. Challenges them appropriately

Original Question: %s
Candidate's Answer: %s
%s

Generate ONE thoughtful follow-up question that will provide more insight into the candidate's capabilities.
Keep it conversational and professional.`

func followUpPrompt(originalQuestion, answer, role, interviewContext string) string {
	contextSection := ""
	if interviewContext != "" {
		contextSection = "Interview Context: " + interviewContext
	}
	return fmt.Sprintf(followUpPromptTemplate, role, originalQuestion, answer, contextSection)
}

const reportPromptTemplate = `Generate a comprehensive interview evaluation report for:

Candidate Information:
- Role: %s
- Experience Level: %s
- Interview Duration: %s

Interview Performance:
- Questions Asked: %d
- Average Response Quality: %d
- Question Types Covered: %s

Detailed Q&A Analysis:
%s

Generate a comprehensive report in JSON format:
{
  "executive_summary": "Brief overall assessment",
  "overall_rating": "Strong Hire|Hire|No Hire|Strong No Hire",
  "overall_score": 85,
  "category_scores": {
    "technical_skills": 80,
    "communication": 90,
    "problem_solving": 85,
    "cultural_fit": 88,
    "leadership_potential": 75
  },
  "key_strengths": ["Strength 1", "Strength 2", "Strength 3"],
  "areas_for_improvement": ["Area 1", "Area 2"],
  "detailed_analysis": "Comprehensive paragraph analysis",
  "recommendation": "Detailed hiring recommendation with reasoning",
  "next_steps": ["Suggested next steps"],
  "interview_highlights": ["Notable moments"],
  "red_flags": ["Any concerns"],
  "salary_range_assessment": "Appropriate salary range based on performance"
}

Provide honest, constructive, and comprehensive feedback.`

func reportPrompt(candidate CandidateData, digest SessionDigest) string {
	role := candidate.Role
	if role == "" {
		role = "Not specified"
	}
	experience := candidate.ExperienceLevel
	if experience == "" {
		experience = "Not specified"
	}
	duration := digest.Duration
	if duration == "" {
		duration = "Not specified"
	}
	return fmt.Sprintf(reportPromptTemplate,
		role, experience, duration,
		len(digest.QAPairs), digest.AvgScore, strings.Join(digest.QuestionTypes, ", "),
		formatQAPairs(digest.QAPairs))
}

func formatQAPairs(pairs []QAEntry) string {
	var sb strings.Builder
	for i, p := range pairs {
		fmt.Fprintf(&sb, "\nQ%d: %s\n", i+1, p.Question)
		fmt.Fprintf(&sb, "A%d: %s\n", i+1, p.Answer)
		fmt.Fprintf(&sb, "Score: %d/100\n", p.Score)
	}
	return sb.String()
}

const generalPromptTemplate = `You are a knowledgeable technical mentor and career advisor. Answer this question clearly and helpfully:

Question: %s
%s

Provide a clear, informative, and practical answer. Include examples where appropriate.
Keep the response professional and educational.`

func generalPrompt(question, questionContext string) string {
	contextSection := ""
	if questionContext != "" {
		contextSection = "Context: " + questionContext
	}
	return fmt.Sprintf(generalPromptTemplate, question, contextSection)
}
